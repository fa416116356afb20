package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	core_port "findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"

	legacymiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	ServiceToken   string
}

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Listings      *ListingHandler
	SavedListings *SavedListingHandler
	Boosting      *BoostingHandler
	Notifications *NotificationHandler
	Jobs          *JobHandler
	TrackActivity usecases_port.TrackActivityUseCasePort
}

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(cfg ServerConfig, h Handlers, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, h, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// NewRouter builds the /api/v1 routing tree.
func NewRouter(cfg ServerConfig, h Handlers, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), legacymiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// public
		r.Get("/listings/search", h.Listings.AdvancedSearch)
		r.Get("/listings/recent", h.Listings.RecentListings)
		r.Get("/listings/sponsored", h.Listings.SponsoredListings)
		r.Get("/listings/{listingID}", h.Listings.GetListingDetails)
		r.Get("/boosting-plans", h.Boosting.ListPlans)

		// called on behalf of a user through the API gateway
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware, ActivityMiddleware(h.TrackActivity))

			r.Post("/listings", h.Listings.CreateListing)
			r.Put("/listings/{listingID}", h.Listings.EditListing)
			r.Patch("/listings/{listingID}/active", h.Listings.ToggleListingActive)
			r.Post("/listings/{listingID}/save", h.SavedListings.SaveListing)
			r.Delete("/listings/{listingID}/save", h.SavedListings.UnsaveListing)
			r.Post("/listings/{listingID}/boost", h.Boosting.BoostListing)
			r.Post("/listings/{listingID}/reports", h.Listings.ReportListing)
			r.Get("/me/listings", h.Listings.GetMyListings)
			r.Get("/me/saved-listings", h.SavedListings.GetSavedListings)
			r.Post("/notifications/devices", h.Notifications.RegisterDevice)
			r.Get("/notifications/stream", h.Notifications.Stream)
		})

		// service-to-service
		r.Route("/internal", func(r chi.Router) {
			r.Use(ServiceTokenMiddleware(cfg.ServiceToken))

			r.Post("/boosting-plans", h.Boosting.CreatePlan)
			r.Post("/notifications/send", h.Notifications.SendToDevice)
			r.Post("/notifications/send-to-topic", h.Notifications.SendToTopic)
			r.Post("/jobs/{job}/run", h.Jobs.RunJob)
		})
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
