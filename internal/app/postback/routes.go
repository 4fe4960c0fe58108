package postbackapp

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/funnel-bot/internal/config"
	"github.com/magabrotheeeer/funnel-bot/internal/http/handlers/health"
	"github.com/magabrotheeeer/funnel-bot/internal/http/handlers/postbackreceive"
	"github.com/magabrotheeeer/funnel-bot/internal/http/handlers/redirect"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sig"
	settingsservice "github.com/magabrotheeeer/funnel-bot/internal/services/settings"
	"github.com/magabrotheeeer/funnel-bot/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты сервиса постбэков.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	db *repository.Storage, settings *settingsservice.Service, postbackService postbackreceive.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	links := redirect.Links{RefRegB: cfg.RefRegB, RefDepB: cfg.RefDepB}
	regRedirect := redirect.New(logger, db, settings, links, sig.KindRegistration)
	depRedirect := redirect.New(logger, db, settings, links, sig.KindDeposit)

	r.Get("/", health.New("funnel-postback").ServeHTTP)
	r.Get("/pb", postbackreceive.New(logger, postbackService).ServeHTTP)
	r.Get("/r/{click_id}/{sig}", regRedirect.ServeHTTP)
	r.Get("/d/{click_id}/{sig}", depRedirect.ServeHTTP)
	// Старый формат ссылок, click_id и sig в query
	r.Get("/go/reg", regRedirect.ServeHTTP)
	r.Get("/go/dep", depRedirect.ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
