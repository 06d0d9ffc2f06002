package api

import (
	"context"
	"net/http"
	"time"

	"github.com/eisenwinter/extrxx/api/app/extension"
	"github.com/eisenwinter/extrxx/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Pinger reports if the record store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

var validate *validator.Validate

func compose(
	logger *zap.Logger,
	cfg *config.Configuration,
	service extension.Service,
	store Pinger,
	metrics http.Handler,
) (*chi.Mux, error) {
	validate = validator.New()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Use(loggerMiddleware(logger))

	r.Use(middleware.Recoverer)

	r.Use(middleware.Timeout(50 * time.Second))

	extensionRessource := extension.NewExtensionRessource(
		logger.Named("extension_ressource"),
		service,
		validate,
		cfg.Server,
	)

	r.Mount("/extension", extensionRessource.Router())

	r.Get("/healthz", healthz(logger, store))

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	return r, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

func (*healthResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

func healthz(logger *zap.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, &healthResponse{Status: "unavailable"})
				return
			}
		}
		render.JSON(w, r, &healthResponse{Status: "ok"})
	}
}
