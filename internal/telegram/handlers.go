package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/sig"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
	"github.com/magabrotheeeer/funnel-bot/internal/services/funnel"
)

// UserRegistry методы реестра, нужные пользовательским обработчикам.
type UserRegistry interface {
	GetOrCreateUser(ctx context.Context, tgID int64) (*models.User, error)
	GetUserByTelegramID(ctx context.Context, tgID int64) (*models.User, error)
	SetLanguage(ctx context.Context, userID int64, lang string) error
	EnsureClickID(ctx context.Context, userID int64) (string, error)
}

// FunnelService вычислитель воронки и построитель подписанных ссылок.
type FunnelService interface {
	Evaluate(ctx context.Context, user *models.User) (*funnel.NextAction, error)
	HasAccessNow(ctx context.Context, user *models.User) (bool, error)
	SignedLink(ctx context.Context, kind, clickID string) (string, error)
}

// UserSettings настройки, нужные пользовательским обработчикам.
type UserSettings interface {
	SupportURL(ctx context.Context) (string, error)
	ChannelURL(ctx context.Context) (string, error)
}

// Handler обработчики команд и callback-кнопок пользователя.
type Handler struct {
	bot       *tgbotapi.BotAPI
	repo      UserRegistry
	funnel    FunnelService
	settings  UserSettings
	sender    *Sender
	keyboards *Keyboards
	log       *slog.Logger
}

// NewHandler создаёт обработчики пользователя.
func NewHandler(bot *tgbotapi.BotAPI, repo UserRegistry, funnelSvc FunnelService,
	settings UserSettings, sender *Sender, keyboards *Keyboards, log *slog.Logger) *Handler {
	return &Handler{
		bot:       bot,
		repo:      repo,
		funnel:    funnelSvc,
		settings:  settings,
		sender:    sender,
		keyboards: keyboards,
		log:       log,
	}
}

func (h *Handler) answer(cq *tgbotapi.CallbackQuery) {
	_, _ = h.bot.Request(tgbotapi.NewCallback(cq.ID, ""))
}

func (h *Handler) alert(cq *tgbotapi.CallbackQuery, text string) {
	_, _ = h.bot.Request(tgbotapi.NewCallbackWithAlert(cq.ID, text))
}

func (h *Handler) showMain(ctx context.Context, user *models.User) {
	canOpen, err := h.funnel.HasAccessNow(ctx, user)
	if err != nil {
		h.log.Error("access check failed", sl.Err(err))
		canOpen = false
	}
	sup, err := h.settings.SupportURL(ctx)
	if err != nil || sup == "" {
		sup, _ = h.settings.ChannelURL(ctx)
	}
	if sup == "" {
		sup = "https://t.me/"
	}
	lang := h.sender.UserLang(user)
	markup := h.keyboards.Main(ctx, lang, user.IsPlatinum, canOpen, sup)
	if err := h.sender.SendScreen(ctx, user, ScreenMain, "main_title", "main_desc", "", markup); err != nil {
		h.log.Warn("failed to send main screen", sl.Err(err))
	}
}

func (h *Handler) showLangSelect(ctx context.Context, user *models.User) {
	if err := h.sender.SendScreen(ctx, user, ScreenLangs, "lang_title", "lang_title", "",
		h.keyboards.Lang()); err != nil {
		h.log.Warn("failed to send language screen", sl.Err(err))
	}
}

func (h *Handler) route(ctx context.Context, user *models.User) {
	action, err := h.funnel.Evaluate(ctx, user)
	if err != nil {
		h.log.Error("funnel evaluation failed", slog.Int64("telegram_id", user.TelegramID), sl.Err(err))
		return
	}
	if err := h.sender.Dispatch(ctx, user, action); err != nil {
		h.log.Warn("failed to dispatch screen", sl.Err(err))
	}
}

// HandleStart обрабатывает /start: первый контакт получает выбор языка,
// дальше всегда главное меню.
func (h *Handler) HandleStart(ctx context.Context, msg *tgbotapi.Message) {
	user, err := h.repo.GetOrCreateUser(ctx, msg.From.ID)
	if err != nil {
		h.log.Error("failed to get or create user", sl.Err(err))
		return
	}
	if user.Language == "" {
		h.showLangSelect(ctx, user)
		return
	}
	h.showMain(ctx, user)
}

// HandleWhoami отвечает дампом состояния пользователя.
func (h *Handler) HandleWhoami(ctx context.Context, msg *tgbotapi.Message) {
	user, err := h.repo.GetUserByTelegramID(ctx, msg.From.ID)
	if err != nil {
		reply := tgbotapi.NewMessage(msg.Chat.ID, "no user in db yet")
		_, _ = h.bot.Send(reply)
		return
	}
	text := fmt.Sprintf(
		"tg_id: %d\ngroup: %s\nlang: %s\nsubscribed: %t\nregistered: %t\n"+
			"has_deposit: %t\ntotal_deposits: %.2f\nplatinum: %t\nclick_id: %s\ntrader_id: %s",
		user.TelegramID, user.Group, user.Language,
		user.IsSubscribed, user.IsRegistered, user.HasDeposit,
		user.TotalDeposits, user.IsPlatinum, user.ClickID, user.TraderID)
	_, _ = h.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, text))
}

// HandleCallback маршрутизирует callback-кнопки пользователя.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	user, err := h.repo.GetOrCreateUser(ctx, cq.From.ID)
	if err != nil {
		h.log.Error("failed to get or create user", sl.Err(err))
		h.answer(cq)
		return
	}

	data := cq.Data
	switch {
	case data == "menu":
		h.showMain(ctx, user)
	case data == "instructions":
		lang := h.sender.UserLang(user)
		if err := h.sender.SendScreen(ctx, user, ScreenInstruction,
			"instruction_title", "instruction_text", "",
			h.keyboards.Instruction(ctx, lang)); err != nil {
			h.log.Warn("failed to send instruction screen", sl.Err(err))
		}
	case data == "lang":
		h.showLangSelect(ctx, user)
	case strings.HasPrefix(data, "setlang:"):
		h.handleSetLang(ctx, user, strings.TrimPrefix(data, "setlang:"))
	case data == "get_signal":
		h.handleGetSignal(ctx, user)
	case data == "check_sub":
		h.route(ctx, user)
	case data == "btn_register":
		h.handleBtnRegister(ctx, cq, user)
		return
	}
	h.answer(cq)
}

func (h *Handler) handleSetLang(ctx context.Context, user *models.User, lang string) {
	if !IsSupportedLanguage(lang) {
		lang = h.sender.defaultLang
	}
	if err := h.repo.SetLanguage(ctx, user.ID, lang); err != nil {
		h.log.Error("failed to set language", sl.Err(err))
		return
	}
	user.Language = lang
	h.showMain(ctx, user)
}

func (h *Handler) handleGetSignal(ctx context.Context, user *models.User) {
	canOpen, err := h.funnel.HasAccessNow(ctx, user)
	if err != nil {
		h.log.Error("access check failed", sl.Err(err))
		return
	}
	if canOpen {
		lang := h.sender.UserLang(user)
		if err := h.sender.SendScreen(ctx, user, ScreenAccess, "access_title", "access_text", "",
			h.keyboards.Access(ctx, lang, user.IsPlatinum)); err != nil {
			h.log.Warn("failed to send access screen", sl.Err(err))
		}
		return
	}
	h.route(ctx, user)
}

func (h *Handler) handleBtnRegister(ctx context.Context, cq *tgbotapi.CallbackQuery, user *models.User) {
	lang := h.sender.UserLang(user)
	if user.IsRegistered {
		h.alert(cq, Text(lang, "already_registered"))
		return
	}
	clickID, err := h.repo.EnsureClickID(ctx, user.ID)
	if err != nil {
		h.log.Error("failed to ensure click id", sl.Err(err))
		h.answer(cq)
		return
	}
	user.ClickID = clickID
	regURL, err := h.funnel.SignedLink(ctx, sig.KindRegistration, clickID)
	if err != nil {
		h.log.Error("failed to build register link", sl.Err(err))
		h.answer(cq)
		return
	}
	if err := h.sender.SendScreen(ctx, user, ScreenRegister, "register_title", "register_text", "",
		h.keyboards.Register(ctx, lang, regURL)); err != nil {
		h.log.Warn("failed to send register screen", sl.Err(err))
	}
	h.answer(cq)
}
