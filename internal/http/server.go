package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tripledger/internal/cache"
	"tripledger/internal/core"
	"tripledger/internal/middleware/ratelimit"
	"tripledger/internal/middleware/trace"
	"tripledger/internal/services"
)

type Server struct {
	http.Server
	svc         *services.TripService
	auth        AuthStore
	rateLimiter *ratelimit.Limiter

	// LRU caches for the hot read endpoints, invalidated per trip on writes
	balancesCache *cache.LRUCache[[]core.Balance]
	summaryCache  *cache.LRUCache[core.Summary]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.TripService, auth AuthStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		svc:           svc,
		auth:          auth,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		balancesCache: cache.NewLRUCache[[]core.Balance](200, 30*time.Second),
		summaryCache:  cache.NewLRUCache[core.Summary](200, 30*time.Second),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.balancesCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/trips", s.handleCreateTrip)
	mux.HandleFunc("GET /api/trips/{tripId}", s.handleGetTrip)

	mux.HandleFunc("GET /api/trips/{tripId}/attendees", s.handleListAttendees)
	mux.HandleFunc("POST /api/trips/{tripId}/attendees", s.handleAddAttendee)

	mux.HandleFunc("GET /api/trips/{tripId}/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/trips/{tripId}/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/trips/{tripId}/expenses/{expenseId}", s.handleGetExpense)
	mux.HandleFunc("PATCH /api/trips/{tripId}/expenses/{expenseId}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/trips/{tripId}/expenses/{expenseId}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/trips/{tripId}/payments", s.handleListPayments)
	mux.HandleFunc("POST /api/trips/{tripId}/payments", s.handleCreatePayment)
	mux.HandleFunc("POST /api/trips/{tripId}/payments/{paymentId}/confirm", s.handleConfirmPayment)
	mux.HandleFunc("POST /api/trips/{tripId}/payments/{paymentId}/cancel", s.handleCancelPayment)

	mux.HandleFunc("GET /api/trips/{tripId}/balances", s.handleBalances)
	mux.HandleFunc("GET /api/trips/{tripId}/balances/summary", s.handleBalancesSummary)
	mux.HandleFunc("GET /api/trips/{tripId}/settlements", s.handleSettlements)

	mux.HandleFunc("POST /api/payment-links", s.handlePaymentLinks)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	traced := trace.NewMiddleware(clientIP)
	limited := s.rateLimiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
		NewAPIResponse().
			Status(http.StatusTooManyRequests).
			Header("Retry-After", "60").
			Error("rate limit exceeded").
			Write(w)
	})

	s.Server = http.Server{
		Addr:    addr,
		Handler: traced.Middleware(limited(mux)),
	}
	return s
}

// invalidateTrip drops a trip's cached reads after its ledger changed.
func (s *Server) invalidateTrip(tripID string) {
	s.balancesCache.DeletePrefix(tripID + ":")
	s.summaryCache.DeletePrefix(tripID + ":")
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeData(w, map[string]string{"status": "ready"})
}
