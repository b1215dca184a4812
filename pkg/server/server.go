package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	inventoryhandler "github.com/ft-tools/forest-atlas/pkg/handlers/inventory"
	forestmiddleware "github.com/ft-tools/forest-atlas/pkg/server/middleware"
	"github.com/ft-tools/forest-atlas/pkg/services/config"
	"github.com/ft-tools/forest-atlas/pkg/store/session"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Dependencies struct {
	Store *session.Store
	Cfg   *config.Config
}

func NewWebAPI(logger zerolog.Logger, deps Dependencies) *WebAPI {
	invHandler := inventoryhandler.NewHandler(deps.Store, deps.Cfg)

	router := chi.NewRouter()

	router.Use(forestmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/inventory", invHandler.Upload)
		r.Post("/inventory/validate", invHandler.Validate)
		r.Get("/inventory/{id}", invHandler.Get)
		r.Get("/inventory/{id}/metrics", invHandler.Metrics)
		r.Get("/inventory/{id}/statistics", invHandler.Statistics)
		r.Get("/inventory/{id}/distribution", invHandler.Distribution)
		r.Post("/inventory/{id}/growth", invHandler.Growth)
		r.Get("/inventory/{id}/export", invHandler.Export)
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    deps.Cfg.Server.Addr(),
			Handler: router,
		},
		shutdownTimeout: deps.Cfg.Server.ShutdownTimeout(),
	}
}

// Router exposes the configured routes, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
