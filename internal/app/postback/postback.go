// Package postbackapp собирает HTTP-сервис постбэков и редиректов:
// хранилище, кэш, сервисы воронки и роутер.
package postbackapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/funnel-bot/internal/cache"
	"github.com/magabrotheeeer/funnel-bot/internal/config"
	"github.com/magabrotheeeer/funnel-bot/internal/migrations"
	"github.com/magabrotheeeer/funnel-bot/internal/services/funnel"
	"github.com/magabrotheeeer/funnel-bot/internal/services/postback"
	"github.com/magabrotheeeer/funnel-bot/internal/services/settings"
	"github.com/magabrotheeeer/funnel-bot/internal/storage/repository"
	"github.com/magabrotheeeer/funnel-bot/internal/telegram"
)

// App HTTP-сервис постбэков.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключает базу, выполняет миграции,
// поднимает кэш и собирает сервисы воронки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	settingsService := settings.New(db, cacheRedis, cfg, logger)
	membership := telegram.NewMembership(bot, settingsService)
	keyboards := telegram.NewKeyboards(settingsService, cfg.MiniAppURL, cfg.MiniAppPlatinumURL)
	screenSender := telegram.NewSender(bot, db, keyboards, cfg.AssetsDir, cfg.DefaultLang, logger)
	funnelService := funnel.New(db, settingsService, membership, cfg.PublicBase, logger)
	postbackService := postback.New(db, settingsService, funnelService, screenSender, membership, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db, settingsService, postbackService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и гасит его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
