package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tripledger/internal/amqp"
	"tripledger/internal/core"
	"tripledger/internal/log"
	"tripledger/internal/store"
)

// Consumer delivers balance recompute messages. *amqp.Client satisfies it.
type Consumer interface {
	ConsumeBalanceRecompute(ctx context.Context, handler func(*amqp.BalanceRecomputeMessage) error) error
}

// LedgerStore bundles the ports the worker reads and writes.
type LedgerStore interface {
	store.TripStore
	store.AttendeeStore
	store.ExpenseStore
	store.PaymentStore
	store.SnapshotStore
}

// Config holds snapshot worker settings
type Config struct {
	// SweepInterval is how often every trip is recomputed regardless of
	// queue traffic, catching messages lost to broker downtime (default: 5m)
	SweepInterval time.Duration
	// BatchSize bounds how many trips are recomputed concurrently during
	// a sweep (default: 10)
	BatchSize int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		SweepInterval: 5 * time.Minute,
		BatchSize:     10,
	}
}

// SnapshotWorker consumes recompute messages and persists balance snapshots.
type SnapshotWorker struct {
	store    LedgerStore
	consumer Consumer
	config   Config
	now      func() time.Time
}

func NewSnapshotWorker(st LedgerStore, consumer Consumer, config Config) *SnapshotWorker {
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultConfig().SweepInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &SnapshotWorker{
		store:    st,
		consumer: consumer,
		config:   config,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, driving the consume loop and the
// periodic sweep concurrently. A nil consumer runs the sweep alone.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			err := w.consumer.ConsumeBalanceRecompute(ctx, func(msg *amqp.BalanceRecomputeMessage) error {
				return w.RecomputeTrip(ctx, msg.TripID)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		return w.runSweep(ctx)
	})

	slog.InfoContext(ctx, "Snapshot worker started",
		log.FieldComponent, log.ComponentWorker,
		"sweep_interval", w.config.SweepInterval,
		"consuming", w.consumer != nil)

	return g.Wait()
}

func (w *SnapshotWorker) runSweep(ctx context.Context) error {
	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Snapshot sweep stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.SweepAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Snapshot sweep failed", "error", err)
			}
		}
	}
}

// SweepAll recomputes the snapshot of every known trip. Failures on
// individual trips are logged and do not stop the sweep.
func (w *SnapshotWorker) SweepAll(ctx context.Context) error {
	tripIDs, err := w.store.ListTripIDs(ctx)
	if err != nil {
		return fmt.Errorf("list trips: %w", err)
	}

	// Recompute in bounded batches so a large trip roster cannot swamp
	// the store with concurrent reads.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.BatchSize)

	var failed int64
	for _, tripID := range tripIDs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := w.RecomputeTrip(gctx, tripID); err != nil {
				atomic.AddInt64(&failed, 1)
				slog.ErrorContext(gctx, "Failed to recompute trip",
					log.FieldComponent, log.ComponentWorker,
					log.FieldTripID, tripID,
					log.FieldError, err.Error())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Snapshot sweep completed",
		log.FieldComponent, log.ComponentWorker,
		"trips", len(tripIDs),
		"failed", atomic.LoadInt64(&failed))
	return nil
}

// RecomputeTrip rebuilds and persists the balance snapshot for one trip.
func (w *SnapshotWorker) RecomputeTrip(ctx context.Context, tripID string) error {
	roster, err := w.store.GetAttendeesByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	expenses, err := w.store.ListExpenses(ctx, tripID)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	payments, err := w.store.GetPaymentsByTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}

	balances, err := core.ComputeBalances(roster, expenses, payments)
	if err != nil {
		return fmt.Errorf("compute balances: %w", err)
	}

	snap := store.BalanceSnapshot{
		TripID:     tripID,
		Balances:   balances,
		ComputedAt: w.now(),
	}
	if err := w.store.SaveBalanceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Balance snapshot recomputed",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpSnapshot,
		log.FieldTripID, tripID,
		"attendees", len(balances))
	return nil
}
