package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/glowdesk/salon_backend/internal/metrics"
	"github.com/glowdesk/salon_backend/internal/service"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Server is the thin HTTP surface over the scheduling engine. It only maps
// requests to engine operations and error codes to statuses; all rules live
// in the services.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(
	addr string,
	alloc *service.AllocationService,
	bookings *service.BookingService,
	roster *service.RosterService,
	util *service.UtilizationService,
	logger *zap.Logger,
) *Server {
	h := &handler{
		alloc:    alloc,
		bookings: bookings,
		roster:   roster,
		util:     util,
		logger:   logger,
	}

	router := httprouter.New()

	router.POST("/api/line-items/:id/assign", h.assignStaff)
	router.POST("/api/bookings", h.createBooking)
	router.GET("/api/bookings/:id", h.getBooking)
	router.POST("/api/bookings/:id/reschedule", h.reschedule)
	router.POST("/api/bookings/:id/start", h.startBooking)
	router.POST("/api/bookings/:id/complete", h.completeBooking)
	router.POST("/api/bookings/:id/no-show", h.noShowBooking)
	router.POST("/api/bookings/:id/cancel", h.cancelBooking)
	router.GET("/api/staff/:id/roster", h.rosterStatus)
	router.GET("/api/roster", h.rosterBoard)
	router.GET("/api/availability", h.availability)
	router.GET("/api/utilization", h.utilization)

	router.Handler(http.MethodGet, "/metrics",
		promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	chain := cors.AllowAll().Handler(withRequestID(withLogging(logger, router)))

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           chain,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
