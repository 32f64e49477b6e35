package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tripledger/internal/core"
	"tripledger/internal/log"
	"tripledger/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements every store port on a single SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTrip implements store.TripStore
func (r *SQLiteRepository) CreateTrip(ctx context.Context, t store.Trip) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trips (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTripID, t.ID,
		"name", t.Name)
	return nil
}

// GetTrip implements store.TripStore
func (r *SQLiteRepository) GetTrip(ctx context.Context, tripID string) (store.Trip, error) {
	var t store.Trip
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM trips WHERE id = ?`, tripID).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Trip{}, store.ErrNotFound
	}
	if err != nil {
		return store.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// ListTripIDs implements store.TripStore
func (r *SQLiteRepository) ListTripIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM trips ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list trip ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan trip id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddAttendee implements store.AttendeeStore
func (r *SQLiteRepository) AddAttendee(ctx context.Context, tripID string, a core.Attendee) error {
	if _, err := r.GetTrip(ctx, tripID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendees (id, trip_id, name, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM attendees WHERE trip_id = ?))`,
		a.ID, tripID, a.Name, tripID)
	if err != nil {
		return fmt.Errorf("add attendee: %w", err)
	}
	return nil
}

// GetAttendeesByTrip implements store.AttendeeStore
func (r *SQLiteRepository) GetAttendeesByTrip(ctx context.Context, tripID string) ([]core.Attendee, error) {
	if _, err := r.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM attendees WHERE trip_id = ? AND deleted = 0 ORDER BY position`, tripID)
	if err != nil {
		return nil, fmt.Errorf("get attendees: %w", err)
	}
	defer rows.Close()

	var roster []core.Attendee
	for rows.Next() {
		var a core.Attendee
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		roster = append(roster, a)
	}
	return roster, rows.Err()
}

// IsMember implements store.AttendeeStore
func (r *SQLiteRepository) IsMember(ctx context.Context, tripID, attendeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM attendees WHERE trip_id = ? AND id = ? AND deleted = 0)`,
		tripID, attendeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// CreateExpense implements store.ExpenseStore
func (r *SQLiteRepository) CreateExpense(ctx context.Context, rec store.ExpenseRecord) error {
	if err := rec.Expense.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, payer_id, amount_cents, status, category, description, expense_date, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Expense.ID, rec.TripID, rec.Expense.PayerID, rec.Expense.Amount.Cents,
		string(rec.Expense.Status), rec.Expense.Category, rec.Expense.Description,
		rec.Expense.Date, rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, rec.Expense.ID, rec.Expense.Participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldExpenseID, rec.Expense.ID,
		log.FieldTripID, rec.TripID,
		log.FieldAmountCents, rec.Expense.Amount.Cents,
		log.FieldCategory, rec.Expense.Category)
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expenseID string, parts []core.Participant) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expense_participants (expense_id, attendee_id, opted_in, share_cents, position)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare participants: %w", err)
	}
	defer stmt.Close()

	for i, p := range parts {
		var share sql.NullInt64
		if p.ShareCents != nil {
			share = sql.NullInt64{Int64: *p.ShareCents, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, expenseID, p.AttendeeID, p.OptedIn, share, i); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	return nil
}

// GetExpense implements store.ExpenseStore
func (r *SQLiteRepository) GetExpense(ctx context.Context, tripID, expenseID string) (store.ExpenseRecord, error) {
	var (
		rec    store.ExpenseRecord
		status string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, trip_id, payer_id, amount_cents, status, category, description, expense_date, created_by, created_at, updated_at
		 FROM expenses WHERE trip_id = ? AND id = ? AND deleted = 0`, tripID, expenseID).
		Scan(&rec.Expense.ID, &rec.TripID, &rec.Expense.PayerID, &rec.Expense.Amount.Cents,
			&status, &rec.Expense.Category, &rec.Expense.Description, &rec.Expense.Date,
			&rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ExpenseRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.ExpenseRecord{}, fmt.Errorf("get expense: %w", err)
	}
	rec.Expense.Status = core.ExpenseStatus(status)

	rec.Expense.Participants, err = r.loadParticipants(ctx, expenseID)
	if err != nil {
		return store.ExpenseRecord{}, err
	}
	return rec, nil
}

func (r *SQLiteRepository) loadParticipants(ctx context.Context, expenseID string) ([]core.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT attendee_id, opted_in, share_cents FROM expense_participants
		 WHERE expense_id = ? ORDER BY position`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	defer rows.Close()

	var parts []core.Participant
	for rows.Next() {
		var (
			p     core.Participant
			share sql.NullInt64
		)
		if err := rows.Scan(&p.AttendeeID, &p.OptedIn, &share); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if share.Valid {
			p.ShareCents = &share.Int64
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// GetExpensesByTrip implements store.ExpenseStore
func (r *SQLiteRepository) GetExpensesByTrip(ctx context.Context, tripID string, page, limit int) (store.ExpensePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	result := store.ExpensePage{Page: page, Limit: limit, Data: []store.ExpenseRecord{}}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE trip_id = ? AND deleted = 0`, tripID).
		Scan(&result.Total)
	if err != nil {
		return result, fmt.Errorf("count expenses: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM expenses WHERE trip_id = ? AND deleted = 0
		 ORDER BY expense_date DESC, id LIMIT ? OFFSET ?`,
		tripID, limit, (page-1)*limit)
	if err != nil {
		return result, fmt.Errorf("page expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return result, fmt.Errorf("scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return result, err
	}

	for _, id := range ids {
		rec, err := r.GetExpense(ctx, tripID, id)
		if err != nil {
			return result, err
		}
		result.Data = append(result.Data, rec)
	}
	return result, nil
}

// ListExpenses implements store.ExpenseStore
func (r *SQLiteRepository) ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM expenses WHERE trip_id = ? AND deleted = 0 ORDER BY expense_date, id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	expenses := make([]core.Expense, 0, len(ids))
	for _, id := range ids {
		rec, err := r.GetExpense(ctx, tripID, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, rec.Expense)
	}
	return expenses, nil
}

// UpdateExpense implements store.ExpenseStore
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, rec store.ExpenseRecord) error {
	if err := rec.Expense.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET payer_id = ?, amount_cents = ?, status = ?, category = ?, description = ?, updated_at = ?
		 WHERE trip_id = ? AND id = ? AND deleted = 0`,
		rec.Expense.PayerID, rec.Expense.Amount.Cents, string(rec.Expense.Status),
		rec.Expense.Category, rec.Expense.Description, rec.UpdatedAt,
		rec.TripID, rec.Expense.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM expense_participants WHERE expense_id = ?`, rec.Expense.ID); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, rec.Expense.ID, rec.Expense.Participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// SoftDeleteExpense implements store.ExpenseStore
func (r *SQLiteRepository) SoftDeleteExpense(ctx context.Context, tripID, expenseID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted = 1 WHERE trip_id = ? AND id = ?`, tripID, expenseID)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense soft-deleted",
		log.FieldComponent, log.ComponentStorage,
		log.FieldExpenseID, expenseID,
		log.FieldTripID, tripID)
	return nil
}

// GetTripTotalExpenses implements store.ExpenseStore
func (r *SQLiteRepository) GetTripTotalExpenses(ctx context.Context, tripID string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE trip_id = ? AND deleted = 0`, tripID).
		Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("trip total: %w", err)
	}
	return total, nil
}

// GetExpenseSummaryByCategory implements store.ExpenseStore
func (r *SQLiteRepository) GetExpenseSummaryByCategory(ctx context.Context, tripID string) ([]store.CategorySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents), COUNT(*) FROM expenses
		 WHERE trip_id = ? AND deleted = 0 GROUP BY category ORDER BY category`, tripID)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	defer rows.Close()

	var sums []store.CategorySummary
	for rows.Next() {
		var cs store.CategorySummary
		if err := rows.Scan(&cs.Category, &cs.TotalCents, &cs.Count); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		sums = append(sums, cs)
	}
	return sums, rows.Err()
}

// CreatePayment implements store.PaymentStore
func (r *SQLiteRepository) CreatePayment(ctx context.Context, rec store.PaymentRecord) error {
	if err := rec.Payment.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, trip_id, from_id, to_id, amount_cents, status, payment_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Payment.ID, rec.TripID, rec.Payment.FromID, rec.Payment.ToID,
		rec.Payment.Amount.Cents, string(rec.Payment.Status), rec.Payment.Date, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldPaymentID, rec.Payment.ID,
		log.FieldTripID, rec.TripID,
		log.FieldAmountCents, rec.Payment.Amount.Cents)
	return nil
}

// GetPayment implements store.PaymentStore
func (r *SQLiteRepository) GetPayment(ctx context.Context, tripID, paymentID string) (store.PaymentRecord, error) {
	var (
		rec    store.PaymentRecord
		status string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, trip_id, from_id, to_id, amount_cents, status, payment_date, created_at
		 FROM payments WHERE trip_id = ? AND id = ?`, tripID, paymentID).
		Scan(&rec.Payment.ID, &rec.TripID, &rec.Payment.FromID, &rec.Payment.ToID,
			&rec.Payment.Amount.Cents, &status, &rec.Payment.Date, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.PaymentRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.PaymentRecord{}, fmt.Errorf("get payment: %w", err)
	}
	rec.Payment.Status = core.PaymentStatus(status)
	return rec, nil
}

// GetPaymentsByTrip implements store.PaymentStore
func (r *SQLiteRepository) GetPaymentsByTrip(ctx context.Context, tripID string) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, from_id, to_id, amount_cents, status, payment_date
		 FROM payments WHERE trip_id = ? ORDER BY payment_date, id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		var (
			p      core.Payment
			status string
		)
		if err := rows.Scan(&p.ID, &p.FromID, &p.ToID, &p.Amount.Cents, &status, &p.Date); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Status = core.PaymentStatus(status)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SetPaymentStatus implements store.PaymentStore
func (r *SQLiteRepository) SetPaymentStatus(ctx context.Context, tripID, paymentID string, status core.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE trip_id = ? AND id = ?`,
		string(status), tripID, paymentID)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AttendeeForToken implements store.SessionStore
func (r *SQLiteRepository) AttendeeForToken(ctx context.Context, token string) (string, error) {
	var (
		attendeeID string
		expiresAt  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT attendee_id, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&attendeeID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if expiresAt.Valid && time.Now().After(expiresAt.Time) {
		return "", store.ErrTokenExpired
	}
	return attendeeID, nil
}

// CreateSession implements store.SessionStore
func (r *SQLiteRepository) CreateSession(ctx context.Context, s store.Session) error {
	var expires any
	if !s.ExpiresAt.IsZero() {
		expires = s.ExpiresAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, attendee_id, expires_at) VALUES (?, ?, ?)`,
		s.Token, s.AttendeeID, expires)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SaveBalanceSnapshot implements store.SnapshotStore
func (r *SQLiteRepository) SaveBalanceSnapshot(ctx context.Context, snap store.BalanceSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM balance_snapshots WHERE trip_id = ?`, snap.TripID); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO balance_snapshots (trip_id, attendee_id, name, balance_cents, computed_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot: %w", err)
	}
	defer stmt.Close()

	for _, b := range snap.Balances {
		if _, err := stmt.ExecContext(ctx, snap.TripID, b.AttendeeID, b.Name, b.BalanceCents, snap.ComputedAt); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Balance snapshot saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTripID, snap.TripID,
		"attendees", len(snap.Balances))
	return nil
}

// GetBalanceSnapshot implements store.SnapshotStore
func (r *SQLiteRepository) GetBalanceSnapshot(ctx context.Context, tripID string) (store.BalanceSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT attendee_id, name, balance_cents, computed_at FROM balance_snapshots
		 WHERE trip_id = ? ORDER BY rowid`, tripID)
	if err != nil {
		return store.BalanceSnapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	defer rows.Close()

	snap := store.BalanceSnapshot{TripID: tripID}
	for rows.Next() {
		var b core.Balance
		if err := rows.Scan(&b.AttendeeID, &b.Name, &b.BalanceCents, &snap.ComputedAt); err != nil {
			return store.BalanceSnapshot{}, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Balances = append(snap.Balances, b)
	}
	if err := rows.Err(); err != nil {
		return store.BalanceSnapshot{}, err
	}
	if len(snap.Balances) == 0 {
		return store.BalanceSnapshot{}, store.ErrNotFound
	}
	return snap, nil
}
