package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminRouter обработчики панели администратора. Каждый метод возвращает
// true, если update обработан и дальше его передавать не нужно.
type AdminRouter interface {
	HandleCommand(ctx context.Context, msg *tgbotapi.Message) bool
	HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) bool
	HandleMessage(ctx context.Context, msg *tgbotapi.Message) bool
}

// Bot long polling и маршрутизация обновлений между пользовательскими
// обработчиками и админкой.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	admin   AdminRouter
	log     *slog.Logger
}

// NewBot создаёт обёртку над Bot API.
func NewBot(api *tgbotapi.BotAPI, handler *Handler, admin AdminRouter, log *slog.Logger) *Bot {
	return &Bot{api: api, handler: handler, admin: admin, log: log}
}

// Run крутит long polling до отмены контекста.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.log.Info("bot started", slog.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.route(ctx, update)
		}
	}
}

func (b *Bot) route(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if b.admin.HandleCallback(ctx, cq) {
			return
		}
		b.handler.HandleCallback(ctx, cq)
	case update.Message != nil:
		msg := update.Message
		switch msg.Command() {
		case "start":
			b.handler.HandleStart(ctx, msg)
		case "whoami":
			b.handler.HandleWhoami(ctx, msg)
		case "admin":
			b.admin.HandleCommand(ctx, msg)
		default:
			// не команда: возможно, админка ждёт ввод
			b.admin.HandleMessage(ctx, msg)
		}
	}
}
