package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ryanbastic/padboard/internal/board"
	"github.com/ryanbastic/padboard/internal/metrics"
)

// NewServer creates an HTTP server with all routes configured. backends are
// pinged by /readyz.
func NewServer(logger *slog.Logger, svc *board.Service, backends map[string]Pinger) http.Handler {
	mux := chi.NewRouter()

	mux.Use(RequestID)
	mux.Use(Logging(logger))
	mux.Use(Recovery(logger))
	mux.Use(metrics.Metrics)

	health := NewHealthHandler(backends, logger)
	mux.Get("/livez", health.Livez)
	mux.Get("/readyz", health.Readyz)
	mux.Handle("/metrics", promhttp.Handler())

	config := huma.DefaultConfig("padboard", "1.0.0")
	config.Info.Description = "Button boards, their buttons and the functionality bound to each button."
	api := humachi.New(mux, config)

	registerBoardRoutes(api, NewBoardHandler(svc, logger))
	registerButtonRoutes(api, NewButtonHandler(svc, logger))
	registerFunctionalityRoutes(api, NewFunctionalityHandler(svc, logger))
	registerSnapshotRoutes(api, NewSnapshotHandler(svc, logger))

	return mux
}
