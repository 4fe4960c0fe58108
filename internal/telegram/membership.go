package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChannelIDSource источник id канала, настраиваемого в рантайме.
type ChannelIDSource interface {
	ChannelID(ctx context.Context) (int64, error)
}

// Membership живая проверка членства в канале через Bot API.
type Membership struct {
	bot      *tgbotapi.BotAPI
	settings ChannelIDSource
}

// NewMembership создаёт проверку членства.
func NewMembership(bot *tgbotapi.BotAPI, settings ChannelIDSource) *Membership {
	return &Membership{bot: bot, settings: settings}
}

// IsMember проверяет, состоит ли пользователь в канале.
// Ошибка Bot API (бот выгнан из канала, канал не задан) трактуется
// вызывающим кодом как "не подписан".
func (m *Membership) IsMember(ctx context.Context, tgID int64) (bool, error) {
	channelID, err := m.settings.ChannelID(ctx)
	if err != nil {
		return false, err
	}
	member, err := m.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: channelID,
			UserID: tgID,
		},
	})
	if err != nil {
		return false, err
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	default:
		return false, nil
	}
}
