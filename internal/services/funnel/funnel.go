// Package funnel реализует вычислитель воронки: по текущему состоянию
// пользователя и настройкам ворот решает, какой экран показать следующим.
// Порядок ворот фиксирован: подписка, регистрация, депозит, доступ.
// Побочные эффекты ограничены мутацией флагов в реестре пользователей;
// отправка экранов остаётся за диспетчером уведомлений.
package funnel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/sig"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
)

// Screen экран воронки, который должен быть показан пользователю.
type Screen string

// Экраны, которые может вернуть вычислитель.
const (
	ScreenNone      Screen = "none"
	ScreenSubscribe Screen = "subscribe"
	ScreenRegister  Screen = "register"
	ScreenDeposit   Screen = "deposit"
	ScreenAccess    Screen = "access"
)

// NextAction решение вычислителя: экран и данные для его отрисовки.
type NextAction struct {
	Screen      Screen
	VIP         bool                    // для экрана доступа: достигнута ли платина
	Progress    *models.DepositProgress // для экрана депозита
	ChannelURL  string                  // для экрана подписки
	RegisterURL string                  // подписанная ссылка регистрации
	DepositURL  string                  // подписанная ссылка депозита
}

// UserRegistry методы реестра пользователей, нужные вычислителю.
type UserRegistry interface {
	SetSubscribed(ctx context.Context, userID int64, subscribed bool) error
	EnsureClickID(ctx context.Context, userID int64) (string, error)
	SetPlatinumIfEligible(ctx context.Context, userID int64, threshold float64) (bool, error)
	MarkAccessNotified(ctx context.Context, userID int64) (bool, error)
}

// Settings настройки ворот и порогов.
type Settings interface {
	PbSecret(ctx context.Context) (string, error)
	ChannelURL(ctx context.Context) (string, error)
	PlatinumThreshold(ctx context.Context) (float64, error)
	FirstDepositMin(ctx context.Context) (float64, error)
	CheckSubscriptionEnabled(ctx context.Context) (bool, error)
	CheckRegistrationEnabled(ctx context.Context) (bool, error)
	CheckDepositEnabled(ctx context.Context) (bool, error)
}

// MembershipChecker проверяет членство в канале по живому источнику.
type MembershipChecker interface {
	IsMember(ctx context.Context, tgID int64) (bool, error)
}

// Service вычислитель воронки.
type Service struct {
	repo       UserRegistry
	settings   Settings
	membership MembershipChecker
	publicBase string
	log        *slog.Logger
}

// New создает новый Service. publicBase — базовый URL подписанных редиректов.
func New(repo UserRegistry, settings Settings, membership MembershipChecker, publicBase string, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		settings:   settings,
		membership: membership,
		publicBase: publicBase,
		log:        log,
	}
}

// SignedLink строит подписанную редирект-ссылку вида {base}/r/{clickID}/{sig}.
func (s *Service) SignedLink(ctx context.Context, kind, clickID string) (string, error) {
	secret, err := s.settings.PbSecret(ctx)
	if err != nil {
		return "", err
	}
	path := "r"
	if kind == sig.KindDeposit {
		path = "d"
	}
	return fmt.Sprintf("%s/%s/%s/%s", s.publicBase, path, clickID, sig.Sign(secret, kind, clickID)), nil
}

// refreshSubscription перечитывает членство в канале по живому источнику.
// Флаги из БД могут отставать, поэтому положительный ответ немедленно
// фиксируется в реестре до вычисления ворот. Ошибка проверки трактуется
// как "не подписан" и не прерывает вычисление.
func (s *Service) refreshSubscription(ctx context.Context, user *models.User) {
	subscribed, err := s.membership.IsMember(ctx, user.TelegramID)
	if err != nil {
		s.log.Warn("membership check failed", slog.Int64("telegram_id", user.TelegramID), sl.Err(err))
		return
	}
	if subscribed && !user.IsSubscribed {
		if err := s.repo.SetSubscribed(ctx, user.ID, true); err != nil {
			s.log.Error("failed to persist subscription flag", sl.Err(err))
			return
		}
		user.IsSubscribed = true
	}
}

// Evaluate решает, какой экран показать пользователю следующим.
// Порядок ворот значим: пользователь с выключенной регистрацией никогда
// не увидит депозит, какие бы флаги ни выставила админка.
func (s *Service) Evaluate(ctx context.Context, user *models.User) (*NextAction, error) {
	const op = "funnel.Evaluate"

	s.refreshSubscription(ctx, user)

	subOn, err := s.settings.CheckSubscriptionEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subOn && !user.IsSubscribed {
		channelURL, err := s.settings.ChannelURL(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &NextAction{Screen: ScreenSubscribe, ChannelURL: channelURL}, nil
	}

	regOn, err := s.settings.CheckRegistrationEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if regOn && !user.IsRegistered {
		clickID, err := s.repo.EnsureClickID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.ClickID = clickID
		regURL, err := s.SignedLink(ctx, sig.KindRegistration, clickID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &NextAction{Screen: ScreenRegister, RegisterURL: regURL}, nil
	}

	depOn, err := s.settings.CheckDepositEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if depOn && !user.HasDeposit {
		action, err := s.DepositAction(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return action, nil
	}

	threshold, err := s.settings.PlatinumThreshold(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	became, err := s.repo.SetPlatinumIfEligible(ctx, user.ID, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if became {
		user.IsPlatinum = true
	}

	won, err := s.repo.MarkAccessNotified(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !won {
		// пользователь уже был уведомлён: повторные вызовы молчат
		return &NextAction{Screen: ScreenNone}, nil
	}
	return &NextAction{Screen: ScreenAccess, VIP: user.IsPlatinum}, nil
}

// DepositAction строит экран депозита с прогрессом и подписанной ссылкой.
func (s *Service) DepositAction(ctx context.Context, user *models.User) (*NextAction, error) {
	const op = "funnel.DepositAction"

	need, err := s.settings.FirstDepositMin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	clickID, err := s.repo.EnsureClickID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ClickID = clickID
	depURL, err := s.SignedLink(ctx, sig.KindDeposit, clickID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	progress := user.Progress(need)
	return &NextAction{Screen: ScreenDeposit, Progress: &progress, DepositURL: depURL}, nil
}

// HasAccessNow сообщает, проходит ли пользователь все включённые ворота
// по текущим флагам, без живой проверки подписки и без побочных эффектов.
func (s *Service) HasAccessNow(ctx context.Context, user *models.User) (bool, error) {
	const op = "funnel.HasAccessNow"

	subOn, err := s.settings.CheckSubscriptionEnabled(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	regOn, err := s.settings.CheckRegistrationEnabled(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	depOn, err := s.settings.CheckDepositEnabled(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	okSub := !subOn || user.IsSubscribed
	okReg := !regOn || user.IsRegistered
	okDep := !depOn || user.HasDeposit
	return okSub && okReg && okDep, nil
}
