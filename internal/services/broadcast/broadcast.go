// Package broadcast ставит задания рассылки в очередь: разворачивает сегмент
// когорты A в список получателей и публикует по заданию на пользователя.
// Саму отправку выполняет отдельный процесс sender.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
	"github.com/streadway/amqp"
)

const pageSize = 500

// RoutingKey маршрут заданий рассылки в exchange broadcasts.
const RoutingKey = "jobs"

// UserLister выборка получателей рассылки.
type UserLister interface {
	ListUsersGroupA(ctx context.Context, segment string, limit, offset int) ([]*models.User, error)
	CountUsersGroupA(ctx context.Context, segment string) (int, error)
}

// Publisher публикует задание в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ChannelPublisher адаптирует канал RabbitMQ под Publisher.
type ChannelPublisher struct {
	Channel *amqp.Channel
}

func (p *ChannelPublisher) Publish(routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.Channel, rabbitmq.Exchange, routingKey, message)
}

// Service постановщик рассылок.
type Service struct {
	repo      UserLister
	publisher Publisher
	log       *slog.Logger
}

// New создает новый Service.
func New(repo UserLister, publisher Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, log: log}
}

// Enqueue разворачивает сегмент в задания и публикует их постранично.
// Возвращает число поставленных заданий. Сбой публикации одного задания
// логируется и не останавливает рассылку.
func (s *Service) Enqueue(ctx context.Context, segment, text, photoID string) (int, error) {
	const op = "broadcast.Enqueue"
	log := s.log.With(slog.String("op", op), slog.String("segment", segment))

	queued := 0
	offset := 0
	for {
		users, err := s.repo.ListUsersGroupA(ctx, segment, pageSize, offset)
		if err != nil {
			return queued, fmt.Errorf("%s: %w", op, err)
		}
		if len(users) == 0 {
			break
		}
		for _, u := range users {
			job := models.BroadcastJob{
				TelegramID: u.TelegramID,
				Text:       text,
				PhotoID:    photoID,
			}
			if err := s.publisher.Publish(RoutingKey, job); err != nil {
				log.Error("failed to publish broadcast job",
					slog.Int64("telegram_id", u.TelegramID), sl.Err(err))
				continue
			}
			queued++
		}
		if len(users) < pageSize {
			break
		}
		offset += pageSize
	}

	log.Info("broadcast enqueued", slog.Int("queued", queued))
	return queued, nil
}

// Audience возвращает размер сегмента без постановки заданий.
func (s *Service) Audience(ctx context.Context, segment string) (int, error) {
	const op = "broadcast.Audience"
	total, err := s.repo.CountUsersGroupA(ctx, segment)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
