// Package sender отправляет задания рассылки из очереди в Telegram
// с ограничением частоты под лимиты Bot API.
package sender

import (
	"context"
	"encoding/json"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/metrics"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
)

// Telegram отправка сообщений через Bot API.
type Telegram interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Service потребитель заданий рассылки.
type Service struct {
	bot     Telegram
	limiter *rate.Limiter
	log     *slog.Logger
}

// New создает новый Service. Лимит 25 сообщений в секунду держит
// рассылку под глобальным лимитом Bot API.
func New(bot Telegram, log *slog.Logger) *Service {
	return &Service{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(25), 5),
		log:     log,
	}
}

// HandleJob обрабатывает одно задание рассылки из очереди.
// Ошибка отправки (пользователь заблокировал бота) не возвращается,
// иначе сообщение вечно крутилось бы в requeue.
func (s *Service) HandleJob(body []byte) error {
	var job models.BroadcastJob
	if err := json.Unmarshal(body, &job); err != nil {
		// битое сообщение, повторная доставка не поможет
		s.log.Error("failed to unmarshal broadcast job", sl.Err(err))
		metrics.BroadcastsSent.WithLabelValues("invalid").Inc()
		return nil
	}

	if err := s.limiter.Wait(context.Background()); err != nil {
		return err
	}

	var msg tgbotapi.Chattable
	if job.PhotoID != "" {
		photo := tgbotapi.NewPhoto(job.TelegramID, tgbotapi.FileID(job.PhotoID))
		photo.Caption = job.Text
		msg = photo
	} else {
		text := job.Text
		if text == "" {
			text = "(пусто)"
		}
		msg = tgbotapi.NewMessage(job.TelegramID, text)
	}

	if _, err := s.bot.Send(msg); err != nil {
		s.log.Warn("broadcast send failed",
			slog.Int64("telegram_id", job.TelegramID), sl.Err(err))
		metrics.BroadcastsSent.WithLabelValues("error").Inc()
		return nil
	}
	metrics.BroadcastsSent.WithLabelValues("ok").Inc()
	return nil
}
