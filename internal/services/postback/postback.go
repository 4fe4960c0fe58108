// Package postback реализует сведение событий партнёрской сети с состоянием
// пользователя: проверку секрета, идемпотентные мутации реестра и запуск
// вычислителя воронки с пушами. Обработка одного пользователя сериализуется
// по click id, одноразовые уведомления защищены условными UPDATE в реестре,
// поэтому конкурентная доставка вебхуков не даёт двойных пушей.
package postback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/keylock"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/metrics"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
	"github.com/magabrotheeeer/funnel-bot/internal/services/funnel"
	"github.com/magabrotheeeer/funnel-bot/internal/storage/repository"
)

// Status ответ на постбэк: эхо события и флаги после мутаций.
// Раз пользователь найден и токен верен, ответ всегда успешный,
// даже если пуши вниз по цепочке упали.
type Status struct {
	OK            bool    `json:"ok"`
	Event         string  `json:"event"`
	TelegramID    int64   `json:"telegram_id"`
	IsRegistered  bool    `json:"is_registered"`
	HasDeposit    bool    `json:"has_deposit"`
	TotalDeposits float64 `json:"total_deposits"`
	IsPlatinum    bool    `json:"is_platinum"`
}

// UserRegistry методы реестра пользователей, нужные обработчику постбэков.
type UserRegistry interface {
	GetUserByClickID(ctx context.Context, clickID string) (*models.User, error)
	SetTraderIDIfEmpty(ctx context.Context, userID int64, traderID string) (bool, error)
	MarkRegistered(ctx context.Context, userID int64) (bool, error)
	AddDeposit(ctx context.Context, userID int64, amount float64) (float64, error)
	MarkHasDeposit(ctx context.Context, userID int64) (bool, error)
	SetSubscribed(ctx context.Context, userID int64, subscribed bool) error
	SetPlatinumIfEligible(ctx context.Context, userID int64, threshold float64) (bool, error)
	MarkPlatinumNotified(ctx context.Context, userID int64) (bool, error)
}

// Settings настройки, нужные обработчику постбэков.
type Settings interface {
	PbSecret(ctx context.Context) (string, error)
	FirstDepositMin(ctx context.Context) (float64, error)
	PlatinumThreshold(ctx context.Context) (float64, error)
}

// Evaluator вычислитель воронки.
type Evaluator interface {
	Evaluate(ctx context.Context, user *models.User) (*funnel.NextAction, error)
	DepositAction(ctx context.Context, user *models.User) (*funnel.NextAction, error)
}

// Dispatcher отправляет экраны пользователю. Для обработчика постбэков
// это fire-and-forget: ошибки отправки глотаются и не влияют на ответ.
type Dispatcher interface {
	Dispatch(ctx context.Context, user *models.User, action *funnel.NextAction) error
	SendPlatinum(ctx context.Context, user *models.User) error
}

// MembershipChecker живая проверка членства в канале.
type MembershipChecker interface {
	IsMember(ctx context.Context, tgID int64) (bool, error)
}

// Deduper точка расширения для дедупликации депозитных событий по внешнему
// идентификатору. Текущий контракт накопления сознательно не дедуплицирует:
// партнёрская сеть считается авторитетным леджером.
type Deduper interface {
	// AlreadyApplied сообщает, было ли событие уже учтено.
	AlreadyApplied(ctx context.Context, ev Event) (bool, error)
}

// Service обработчик постбэков.
type Service struct {
	repo       UserRegistry
	settings   Settings
	evaluator  Evaluator
	dispatcher Dispatcher
	membership MembershipChecker
	deduper    Deduper // nil: каждое событие с суммой накапливается
	locks      *keylock.KeyLock
	log        *slog.Logger
}

// New создает новый Service.
func New(repo UserRegistry, settings Settings, evaluator Evaluator, dispatcher Dispatcher,
	membership MembershipChecker, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		settings:   settings,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		membership: membership,
		locks:      keylock.New(),
		log:        log,
	}
}

// WithDeduper подключает дедупликацию депозитных событий.
func (s *Service) WithDeduper(d Deduper) *Service {
	s.deduper = d
	return s
}

// Process применяет событие постбэка к состоянию пользователя.
// Порядок проверок: токен до любого чтения, затем click_id, затем поиск.
// Денежный инкремент фиксируется в БД до любых пушей, чтобы сбой отправки
// или падение процесса не потеряли сумму.
func (s *Service) Process(ctx context.Context, ev Event) (*Status, error) {
	const op = "postback.Process"
	log := s.log.With(slog.String("op", op), slog.String("event", ev.Kind.String()))

	secret, err := s.settings.PbSecret(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// сравнение секрета — обычное равенство, принято дизайном;
	// подписи редиректов сравниваются константно по времени в lib/sig
	if ev.Token == "" || ev.Token != secret {
		metrics.PostbacksTotal.WithLabelValues(ev.Kind.String(), "unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	if ev.ClickID == "" {
		metrics.PostbacksTotal.WithLabelValues(ev.Kind.String(), "bad_request").Inc()
		return nil, ErrBadRequest
	}

	user, err := s.repo.GetUserByClickID(ctx, ev.ClickID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.PostbacksTotal.WithLabelValues(ev.Kind.String(), "not_found").Inc()
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// конкурентные постбэки одного пользователя выполняются по очереди
	s.locks.Lock(ev.ClickID)
	defer s.locks.Unlock(ev.ClickID)

	if ev.TraderID != "" && user.TraderID == "" {
		set, err := s.repo.SetTraderIDIfEmpty(ctx, user.ID, ev.TraderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if set {
			user.TraderID = ev.TraderID
		}
	}

	if ev.Kind.IsRegistration() {
		first, err := s.repo.MarkRegistered(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if first {
			log.Info("user registered", slog.Int64("telegram_id", user.TelegramID))
		}
		user.IsRegistered = true
	}

	if ev.Kind.IsDeposit() || ev.Amount > 0 {
		if err := s.applyDeposit(ctx, user, ev, log); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.refreshSubscription(ctx, user, log)
	s.promotePlatinum(ctx, user, log)

	metrics.PostbacksTotal.WithLabelValues(ev.Kind.String(), "ok").Inc()
	return &Status{
		OK:            true,
		Event:         ev.RawEvent,
		TelegramID:    user.TelegramID,
		IsRegistered:  user.IsRegistered,
		HasDeposit:    user.HasDeposit,
		TotalDeposits: user.TotalDeposits,
		IsPlatinum:    user.IsPlatinum,
	}, nil
}

// applyDeposit накапливает сумму и двигает пользователя по воротам депозита.
// Каждое событие с положительной суммой учитывается как новый депозит:
// дедупликация повторной доставки — ответственность партнёрской сети.
func (s *Service) applyDeposit(ctx context.Context, user *models.User, ev Event, log *slog.Logger) error {
	if ev.Amount > 0 {
		if s.deduper != nil {
			seen, err := s.deduper.AlreadyApplied(ctx, ev)
			if err != nil {
				return err
			}
			if seen {
				return nil
			}
		}
		total, err := s.repo.AddDeposit(ctx, user.ID, ev.Amount)
		if err != nil {
			// потеря денежного инкремента недопустима: ошибка наружу
			return err
		}
		user.TotalDeposits = total
		metrics.DepositsAccumulated.Add(ev.Amount)
		log.Info("deposit accumulated",
			slog.Int64("telegram_id", user.TelegramID),
			slog.Float64("amount", ev.Amount),
			slog.Float64("total", total))
	}

	need, err := s.settings.FirstDepositMin(ctx)
	if err != nil {
		return err
	}

	if user.TotalDeposits < need {
		// до порога не дотянули: обновляем экран прогресса, ошибки глотаем
		action, err := s.evaluator.DepositAction(ctx, user)
		if err != nil {
			log.Warn("failed to build deposit progress", sl.Err(err))
			return nil
		}
		if err := s.dispatcher.Dispatch(ctx, user, action); err != nil {
			log.Warn("failed to push deposit progress", sl.Err(err))
		}
		return nil
	}

	first, err := s.repo.MarkHasDeposit(ctx, user.ID)
	if err != nil {
		return err
	}
	user.HasDeposit = true
	if first {
		log.Info("deposit threshold reached", slog.Int64("telegram_id", user.TelegramID))
	}

	action, err := s.evaluator.Evaluate(ctx, user)
	if err != nil {
		log.Warn("funnel evaluation failed", sl.Err(err))
		return nil
	}
	if err := s.dispatcher.Dispatch(ctx, user, action); err != nil {
		log.Warn("failed to push next screen", sl.Err(err))
	}
	return nil
}

func (s *Service) refreshSubscription(ctx context.Context, user *models.User, log *slog.Logger) {
	subscribed, err := s.membership.IsMember(ctx, user.TelegramID)
	if err != nil {
		log.Warn("membership check failed", sl.Err(err))
		return
	}
	if subscribed && !user.IsSubscribed {
		if err := s.repo.SetSubscribed(ctx, user.ID, true); err != nil {
			log.Error("failed to persist subscription flag", sl.Err(err))
			return
		}
		user.IsSubscribed = true
	}
}

// promotePlatinum пересчитывает платину и пушит её экран не более одного раза.
// Гвард выставляется до отправки: конкурент, проигравший условный UPDATE,
// не пушит вовсе, а упавшая отправка не приводит к повторному пушу.
func (s *Service) promotePlatinum(ctx context.Context, user *models.User, log *slog.Logger) {
	threshold, err := s.settings.PlatinumThreshold(ctx)
	if err != nil {
		log.Warn("failed to read platinum threshold", sl.Err(err))
		return
	}
	became, err := s.repo.SetPlatinumIfEligible(ctx, user.ID, threshold)
	if err != nil {
		log.Error("failed to promote platinum", sl.Err(err))
		return
	}
	if became {
		user.IsPlatinum = true
	}
	if !user.IsPlatinum {
		return
	}

	won, err := s.repo.MarkPlatinumNotified(ctx, user.ID)
	if err != nil {
		log.Error("failed to mark platinum notified", sl.Err(err))
		return
	}
	if !won {
		return
	}
	if err := s.dispatcher.SendPlatinum(ctx, user); err != nil {
		log.Warn("failed to push platinum screen", sl.Err(err))
	}
}
