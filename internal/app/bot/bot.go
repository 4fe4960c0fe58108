// Package botapp собирает Telegram-бота воронки: хранилище, кэш,
// очередь рассылок, сервисы и роутер обновлений.
package botapp

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/funnel-bot/internal/cache"
	"github.com/magabrotheeeer/funnel-bot/internal/config"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/funnel-bot/internal/migrations"
	broadcastservice "github.com/magabrotheeeer/funnel-bot/internal/services/broadcast"
	"github.com/magabrotheeeer/funnel-bot/internal/services/funnel"
	"github.com/magabrotheeeer/funnel-bot/internal/services/settings"
	"github.com/magabrotheeeer/funnel-bot/internal/storage/repository"
	"github.com/magabrotheeeer/funnel-bot/internal/telegram"
	"github.com/magabrotheeeer/funnel-bot/internal/telegram/admin"
)

// App Telegram-бот воронки.
type App struct {
	bot    *telegram.Bot
	conn   *amqp.Connection
	ch     *amqp.Channel
	db     *repository.Storage
	logger *slog.Logger
}

// New создает приложение: подключает базу, кэш и RabbitMQ,
// собирает пользовательские и админские обработчики.
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

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBroadcastQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info("authorized on telegram", slog.String("username", api.Self.UserName))

	settingsService := settings.New(db, cacheRedis, cfg, logger)
	membership := telegram.NewMembership(api, settingsService)
	keyboards := telegram.NewKeyboards(settingsService, cfg.MiniAppURL, cfg.MiniAppPlatinumURL)
	screenSender := telegram.NewSender(api, db, keyboards, cfg.AssetsDir, cfg.DefaultLang, logger)
	funnelService := funnel.New(db, settingsService, membership, cfg.PublicBase, logger)
	broadcaster := broadcastservice.New(db, &broadcastservice.ChannelPublisher{Channel: ch}, logger)
	sessions := admin.NewSessions(cacheRedis)

	adminHandler := admin.NewHandler(api, db, db, settingsService, broadcaster,
		sessions, cfg.IsAdmin, cfg.PublicBase, logger)
	userHandler := telegram.NewHandler(api, db, funnelService, settingsService,
		screenSender, keyboards, logger)

	bot := telegram.NewBot(api, userHandler, adminHandler, logger)

	return &App{
		bot:    bot,
		conn:   conn,
		ch:     ch,
		db:     db,
		logger: logger,
	}, nil
}

// Run запускает long polling и закрывает ресурсы по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	a.bot.Run(ctx)

	a.logger.Info("bot shutting down gracefully")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	a.db.DB.Close()
	return nil
}
