// Package telegram реализует поверхность бота: отправку экранов воронки,
// клавиатуры, живую проверку подписки на канал, обработчики пользователя
// и панель администратора поверх long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
	"github.com/magabrotheeeer/funnel-bot/internal/services/funnel"
)

// максимальная длина подписи к фото в Telegram
const captionLimit = 1024

// ContentRepository доступ к контентным оверрайдам и учёту последнего сообщения.
type ContentRepository interface {
	GetContentOverride(ctx context.Context, lang, screen string) (*models.ContentOverride, error)
	SetLastBotMessageID(ctx context.Context, userID int64, messageID int64) error
}

// Sender отправляет экраны воронки: удаляет предыдущее сообщение бота,
// применяет оверрайды контента, подставляет картинку экрана если она есть.
type Sender struct {
	bot         *tgbotapi.BotAPI
	repo        ContentRepository
	keyboards   *Keyboards
	assetsDir   string
	defaultLang string
	log         *slog.Logger
}

// NewSender создаёт отправитель экранов. assetsDir — каталог с картинками
// экранов, подкаталоги по языку (ru, остальное en).
func NewSender(bot *tgbotapi.BotAPI, repo ContentRepository, keyboards *Keyboards,
	assetsDir, defaultLang string, log *slog.Logger) *Sender {
	return &Sender{
		bot:         bot,
		repo:        repo,
		keyboards:   keyboards,
		assetsDir:   assetsDir,
		defaultLang: defaultLang,
		log:         log,
	}
}

// UserLang язык пользователя с фолбэком на дефолтный.
func (s *Sender) UserLang(user *models.User) string {
	if user.Language != "" {
		return user.Language
	}
	return s.defaultLang
}

func (s *Sender) photoPath(lang, screen string) string {
	subdir := "en"
	if lang == "ru" {
		subdir = "ru"
	}
	for _, base := range []string{s.assetsDir + "_custom", s.assetsDir} {
		p := filepath.Join(base, subdir, screen+".jpg")
		if info, err := os.Stat(p); err == nil && info.Size() > 0 {
			return p
		}
	}
	return ""
}

func (s *Sender) deletePrevious(user *models.User) {
	if user.LastBotMessageID == 0 {
		return
	}
	// сообщение могло быть удалено руками, ошибка не важна
	_, _ = s.bot.Request(tgbotapi.NewDeleteMessage(user.TelegramID, int(user.LastBotMessageID)))
}

// SendScreen отправляет экран screen с заголовком titleKey и текстом textKey,
// применяя оверрайд из БД, и запоминает id отправленного сообщения.
// extra дописывается после текста (пустая строка — ничего).
func (s *Sender) SendScreen(ctx context.Context, user *models.User, screen, titleKey, textKey, extra string,
	markup tgbotapi.InlineKeyboardMarkup) error {
	const op = "telegram.SendScreen"

	s.deletePrevious(user)

	lang := s.UserLang(user)
	title := Text(lang, titleKey)
	body := Text(lang, textKey)

	ov, err := s.repo.GetContentOverride(ctx, lang, screen)
	if err != nil {
		s.log.Warn("content override lookup failed", slog.String("screen", screen), sl.Err(err))
	} else if ov != nil {
		if ov.Title != "" {
			title = ov.Title
		}
		if ov.Text != "" {
			body = ov.Text
		}
	}

	caption := fmt.Sprintf("<b>%s</b>\n\n%s%s", title, body, extra)

	var sent tgbotapi.Message
	img := s.photoPath(lang, screen)
	if img != "" && len(caption) <= captionLimit {
		photo := tgbotapi.NewPhoto(user.TelegramID, tgbotapi.FilePath(img))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = markup
		sent, err = s.bot.Send(photo)
		if err != nil {
			// фолбэк в текст, если фото не ушло
			sent, err = s.sendText(user.TelegramID, caption, markup)
		}
	} else {
		sent, err = s.sendText(user.TelegramID, caption, markup)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetLastBotMessageID(ctx, user.ID, int64(sent.MessageID)); err != nil {
		s.log.Warn("failed to record last bot message", sl.Err(err))
	}
	user.LastBotMessageID = int64(sent.MessageID)
	return nil
}

func (s *Sender) sendText(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	return s.bot.Send(msg)
}

func (s *Sender) depositExtra(lang string, p *models.DepositProgress) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("\n\n<b>%s:</b> $%.2f\n<b>%s:</b> $%.2f\n<b>%s:</b> $%.2f",
		Text(lang, "deposit_need"), p.Needed,
		Text(lang, "deposit_paid"), p.Paid,
		Text(lang, "deposit_left"), p.Remaining)
}

// Dispatch отправляет пользователю экран, выбранный вычислителем воронки.
func (s *Sender) Dispatch(ctx context.Context, user *models.User, action *funnel.NextAction) error {
	lang := s.UserLang(user)
	switch action.Screen {
	case funnel.ScreenSubscribe:
		return s.SendScreen(ctx, user, ScreenSubscribe, "subscribe_title", "subscribe_text", "",
			s.keyboards.Subscribe(ctx, lang, action.ChannelURL))
	case funnel.ScreenRegister:
		return s.SendScreen(ctx, user, ScreenRegister, "register_title", "register_text", "",
			s.keyboards.Register(ctx, lang, action.RegisterURL))
	case funnel.ScreenDeposit:
		return s.SendScreen(ctx, user, ScreenDeposit, "deposit_title", "deposit_text",
			s.depositExtra(lang, action.Progress),
			s.keyboards.Deposit(ctx, lang, action.DepositURL))
	case funnel.ScreenAccess:
		return s.SendScreen(ctx, user, ScreenAccess, "access_title", "access_text", "",
			s.keyboards.Access(ctx, lang, action.VIP))
	case funnel.ScreenNone:
		return nil
	}
	return nil
}

// SendPlatinum отправляет экран Platinum.
func (s *Sender) SendPlatinum(ctx context.Context, user *models.User) error {
	lang := s.UserLang(user)
	return s.SendScreen(ctx, user, ScreenPlatinum, "platinum_title", "platinum_text", "",
		s.keyboards.Access(ctx, lang, true))
}
