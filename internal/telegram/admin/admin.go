// Package admin реализует панель администратора в Telegram: управление
// пользователями когорты A, ссылками, контентом, параметрами воронки,
// рассылками и статистикой. Доступ по allow-list telegram id.
// Ожидание ввода (ссылки, тексты, числа) хранится в redis-сессиях.
package admin

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
	"github.com/magabrotheeeer/funnel-bot/internal/services/settings"
	"github.com/magabrotheeeer/funnel-bot/internal/telegram"
)

const usersPerPage = 20

// UserRegistry методы реестра, нужные админке. Все выборки и тумблеры
// ограничены когортой A.
type UserRegistry interface {
	GetUserByTelegramIDGroupA(ctx context.Context, tgID int64) (*models.User, error)
	ListUsersGroupA(ctx context.Context, segment string, limit, offset int) ([]*models.User, error)
	CountUsersGroupA(ctx context.Context, segment string) (int, error)
	ToggleRegistered(ctx context.Context, tgID int64) error
	ToggleHasDeposit(ctx context.Context, tgID int64) error
	TogglePlatinum(ctx context.Context, tgID int64) error
	GetFunnelStats(ctx context.Context) (*models.FunnelStats, error)
}

// ContentRepository редактор контентных оверрайдов.
type ContentRepository interface {
	GetContentOverride(ctx context.Context, lang, screen string) (*models.ContentOverride, error)
	UpsertContentText(ctx context.Context, lang, screen, text string) error
	DeleteContentOverride(ctx context.Context, lang, screen string) error
}

// Settings рантайм-настройки, доступные из админки.
type Settings interface {
	GetValue(ctx context.Context, key, def string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	SetBool(ctx context.Context, key string, value bool) error
	PbSecret(ctx context.Context) (string, error)
	FirstDepositMin(ctx context.Context) (float64, error)
	PlatinumThreshold(ctx context.Context) (float64, error)
	CheckSubscriptionEnabled(ctx context.Context) (bool, error)
	CheckRegistrationEnabled(ctx context.Context) (bool, error)
	CheckDepositEnabled(ctx context.Context) (bool, error)
	BroadcastText(ctx context.Context) (string, error)
	BroadcastPhoto(ctx context.Context) (string, error)
	SetBroadcastText(ctx context.Context, v string) error
	SetBroadcastPhoto(ctx context.Context, v string) error
}

// Broadcaster постановщик рассылок.
type Broadcaster interface {
	Enqueue(ctx context.Context, segment, text, photoID string) (int, error)
}

// Handler обработчики панели администратора.
type Handler struct {
	bot         *tgbotapi.BotAPI
	repo        UserRegistry
	content     ContentRepository
	settings    Settings
	broadcaster Broadcaster
	sessions    *Sessions
	isAdmin     func(int64) bool
	publicBase  string
	log         *slog.Logger
}

// NewHandler создаёт обработчики админки.
func NewHandler(bot *tgbotapi.BotAPI, repo UserRegistry, content ContentRepository,
	s Settings, broadcaster Broadcaster, sessions *Sessions,
	isAdmin func(int64) bool, publicBase string, log *slog.Logger) *Handler {
	return &Handler{
		bot:         bot,
		repo:        repo,
		content:     content,
		settings:    s,
		broadcaster: broadcaster,
		sessions:    sessions,
		isAdmin:     isAdmin,
		publicBase:  publicBase,
		log:         log,
	}
}

func (h *Handler) answer(cq *tgbotapi.CallbackQuery) {
	_, _ = h.bot.Request(tgbotapi.NewCallback(cq.ID, ""))
}

func (h *Handler) alert(cq *tgbotapi.CallbackQuery, text string) {
	_, _ = h.bot.Request(tgbotapi.NewCallbackWithAlert(cq.ID, text))
}

func (h *Handler) edit(cq *tgbotapi.CallbackQuery, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := h.bot.Send(edit); err != nil {
		h.log.Warn("failed to edit admin message", sl.Err(err))
	}
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, _ = h.bot.Send(msg)
}

// HandleCommand обрабатывает /admin. Возвращает false для чужих команд.
func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) bool {
	if msg.Command() != "admin" {
		return false
	}
	if !h.isAdmin(msg.From.ID) {
		return true
	}
	m := tgbotapi.NewMessage(msg.Chat.ID, "<b>Панель администратора</b>")
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = kbMenu()
	_, _ = h.bot.Send(m)
	return true
}

// HandleCallback обрабатывает callback с префиксом adm:.
// Возвращает false, если callback не для админки.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) bool {
	data := cq.Data
	if !strings.HasPrefix(data, "adm:") {
		return false
	}
	if !h.isAdmin(cq.From.ID) {
		h.answer(cq)
		return true
	}

	parts := strings.Split(data, ":")
	switch {
	case data == "adm:menu":
		_ = h.sessions.Clear(cq.From.ID)
		h.edit(cq, "<b>Панель администратора</b>", kbMenu())
		h.answer(cq)
	case len(parts) == 3 && parts[1] == "users":
		h.showUsers(ctx, cq, parts[2])
	case len(parts) == 5 && parts[1] == "user" && parts[2] == "toggle":
		h.toggleUser(ctx, cq, parts[3], parts[4])
	case len(parts) == 3 && parts[1] == "user":
		h.showUserCard(ctx, cq, parts[2])
	case data == "adm:postbacks":
		h.showPostbacks(ctx, cq)
	case data == "adm:links":
		h.showLinks(ctx, cq)
	case len(parts) == 4 && parts[1] == "links" && parts[2] == "edit":
		h.promptLink(cq, parts[3])
	case data == "adm:content":
		h.edit(cq, "🧩 Редактор контента — выберите язык", kbContentLang())
		h.answer(cq)
	case len(parts) == 4 && parts[1] == "content" && parts[2] == "lang":
		h.edit(cq, fmt.Sprintf("Язык: %s\nВыберите экран:", strings.ToUpper(parts[3])), kbContentScreens(parts[3]))
		h.answer(cq)
	case len(parts) == 5 && parts[1] == "content" && parts[2] == "screen":
		h.showContentScreen(ctx, cq, parts[3], parts[4])
		h.answer(cq)
	case len(parts) == 5 && parts[1] == "content" && parts[2] == "edit_text":
		h.promptContentText(cq, parts[3], parts[4])
	case len(parts) == 5 && parts[1] == "content" && parts[2] == "reset_text":
		h.resetContentText(ctx, cq, parts[3], parts[4])
	case data == "adm:params":
		h.showParams(ctx, cq)
	case data == "adm:param:locked:reg":
		h.alert(cq, "Регистрация — обязательное условие и не может быть отключена.")
	case len(parts) == 4 && parts[1] == "param" && parts[2] == "toggle":
		h.toggleParam(ctx, cq, parts[3])
	case len(parts) == 4 && parts[1] == "param" && parts[2] == "set":
		h.promptParam(cq, parts[3])
	case data == "adm:broadcast":
		h.showBroadcast(ctx, cq)
	case len(parts) == 4 && parts[1] == "bcast" && parts[2] == "seg":
		h.pickSegment(cq, parts[3])
	case data == "adm:bcast:text":
		h.promptBroadcastText(cq)
	case data == "adm:bcast:photo":
		h.promptBroadcastPhoto(cq)
	case data == "adm:bcast:go":
		h.runBroadcast(ctx, cq)
	case data == "adm:stats":
		h.showStats(ctx, cq)
	default:
		h.answer(cq)
	}
	return true
}

// --- пользователи

func (h *Handler) showUsers(ctx context.Context, cq *tgbotapi.CallbackQuery, pageRaw string) {
	page, err := strconv.Atoi(pageRaw)
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * usersPerPage

	total, err := h.repo.CountUsersGroupA(ctx, "all")
	if err != nil {
		h.log.Error("failed to count users", sl.Err(err))
		h.answer(cq)
		return
	}
	users, err := h.repo.ListUsersGroupA(ctx, "all", usersPerPage, offset)
	if err != nil {
		h.log.Error("failed to list users", sl.Err(err))
		h.answer(cq)
		return
	}

	items := make([][2]string, 0, len(users))
	for _, u := range users {
		r, d, p := "❌", "❌", ""
		if u.IsRegistered {
			r = "✅"
		}
		if u.HasDeposit {
			d = "✅"
		}
		if u.IsPlatinum {
			p = "💎"
		}
		items = append(items, [2]string{
			strconv.FormatInt(u.TelegramID, 10),
			fmt.Sprintf("%d  R:%s  D:%s  %s", u.TelegramID, r, d, p),
		})
	}

	hasPrev := page > 1
	hasNext := total > offset+len(users)
	h.edit(cq, fmt.Sprintf("👤 Пользователи (%d)\nВыберите пользователя:", total),
		kbUsersList(items, page, hasPrev, hasNext))
	h.answer(cq)
}

func (h *Handler) toggleUser(ctx context.Context, cq *tgbotapi.CallbackQuery, what, tgRaw string) {
	tgID, err := strconv.ParseInt(tgRaw, 10, 64)
	if err != nil {
		h.answer(cq)
		return
	}
	switch what {
	case "reg":
		err = h.repo.ToggleRegistered(ctx, tgID)
	case "dep":
		err = h.repo.ToggleHasDeposit(ctx, tgID)
	case "plat":
		err = h.repo.TogglePlatinum(ctx, tgID)
	}
	if err != nil {
		h.alert(cq, "Пользователь не найден")
		return
	}
	h.showUserCard(ctx, cq, tgRaw)
}

func (h *Handler) showUserCard(ctx context.Context, cq *tgbotapi.CallbackQuery, tgRaw string) {
	tgID, err := strconv.ParseInt(tgRaw, 10, 64)
	if err != nil {
		h.answer(cq)
		return
	}
	u, err := h.repo.GetUserByTelegramIDGroupA(ctx, tgID)
	if err != nil {
		h.alert(cq, "Пользователь не найден")
		return
	}

	plat := "•"
	if u.IsPlatinum {
		plat = "💎"
	}
	mark := func(v bool) string {
		if v {
			return "✅"
		}
		return "❌"
	}
	text := fmt.Sprintf(
		"🪪 <b>Карточка пользователя</b>\n\n"+
			"TG ID: <code>%d</code>\n"+
			"Язык: %s\n"+
			"Click ID: <code>%s</code>\n"+
			"Trader ID: <code>%s</code>\n\n"+
			"Регистрация: %s\n"+
			"Депозит (факт): %s\n"+
			"Сумма депозитов: %.2f\n"+
			"Platinum: %s\n"+
			"Создан: %s",
		u.TelegramID, orDash(u.Language), orDash(u.ClickID), orDash(u.TraderID),
		mark(u.IsRegistered), mark(u.HasDeposit), u.TotalDeposits, plat,
		u.CreatedAt.Format("2006-01-02 15:04"))

	h.edit(cq, text, kbUserCard(u.TelegramID, u.IsRegistered, u.HasDeposit, u.IsPlatinum))
	h.answer(cq)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return html.EscapeString(v)
}

// --- постбэки

func (h *Handler) showPostbacks(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	secret, err := h.settings.PbSecret(ctx)
	if err != nil {
		h.log.Error("failed to read postback secret", sl.Err(err))
		h.answer(cq)
		return
	}
	base := h.publicBase
	if base == "" {
		base = "https://YOUR_PUBLIC_HOST"
	}

	reg := fmt.Sprintf("%s/pb?event=reg&t=%s&click_id={click_id}&trader_id={trader_id}", base, secret)
	depFirst := fmt.Sprintf("%s/pb?event=dep_first&t=%s&click_id={click_id}&trader_id={trader_id}&sumdep={sumdep}", base, secret)
	depRepeat := fmt.Sprintf("%s/pb?event=dep_repeat&t=%s&click_id={click_id}&trader_id={trader_id}&sumdep={sumdep}", base, secret)

	text := "✏️ <b>Настройка постбэков</b>\n\n" +
		"Вставьте эти URL в кабинете партнёрки.\n" +
		"Обязательно включите макросы: <code>{click_id}</code>, <code>{trader_id}</code>, <code>{sumdep}</code>.\n\n" +
		"<b>Регистрация</b>\n<code>" + html.EscapeString(reg) + "</code>\n\n" +
		"<b>Первый депозит</b>\n<code>" + html.EscapeString(depFirst) + "</code>\n\n" +
		"<b>Повторный депозит</b>\n<code>" + html.EscapeString(depRepeat) + "</code>"

	h.edit(cq, text, kbMenu())
	h.answer(cq)
}

// --- ссылки

func (h *Handler) linksText(ctx context.Context) string {
	get := func(key string) string {
		v, err := h.settings.GetValue(ctx, key, "")
		if err != nil || v == "" {
			return "-"
		}
		return html.EscapeString(v)
	}
	return "🔗 <b>Ссылки</b>\n\n" +
		"Ref:\n<code>" + get(settings.KeyRefRegA) + "</code>\n\n" +
		"Deposit:\n<code>" + get(settings.KeyRefDepA) + "</code>\n\n" +
		"Channel ID: <code>" + get(settings.KeyChannelID) + "</code>\n" +
		"Channel URL: " + get(settings.KeyChannelURL) + "\n" +
		"Support URL: " + get(settings.KeySupportURL) + "\n"
}

func (h *Handler) showLinks(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	_ = h.sessions.Clear(cq.From.ID)
	h.edit(cq, h.linksText(ctx), kbLinks())
	h.answer(cq)
}

var linkPrompts = map[string]string{
	settings.KeyRefRegA:    "Введи новую реф-ссылку:",
	settings.KeyRefDepA:    "Введи новую ссылку депозита:",
	settings.KeyChannelID:  "Введи новый Channel ID (число):",
	settings.KeyChannelURL: "Введи новый Channel URL (http/https):",
	settings.KeySupportURL: "Введи новый Support URL:",
}

func (h *Handler) promptLink(cq *tgbotapi.CallbackQuery, key string) {
	prompt, ok := linkPrompts[key]
	if !ok {
		h.answer(cq)
		return
	}
	if err := h.sessions.Set(cq.From.ID, &AdminSession{State: StateLinkValue, Key: key}); err != nil {
		h.log.Error("failed to save admin session", sl.Err(err))
	}
	// новое сообщение, экран ссылок не затирается
	h.reply(cq.Message.Chat.ID, "✏️ "+prompt)
	h.answer(cq)
}

// --- контент

// соответствие экранов ключам дефолтных текстов
var screenTextKeys = map[string][2]string{
	"main":        {"main_title", "main_desc"},
	"instruction": {"instruction_title", "instruction_text"},
	"subscribe":   {"subscribe_title", "subscribe_text"},
	"register":    {"register_title", "register_text"},
	"deposit":     {"deposit_title", "deposit_text"},
	"access":      {"access_title", "access_text"},
	"platinum":    {"platinum_title", "platinum_text"},
}

func (h *Handler) showContentScreen(ctx context.Context, cq *tgbotapi.CallbackQuery, lang, screen string) {
	keys, ok := screenTextKeys[screen]
	if !ok {
		keys = [2]string{"main_title", "main_desc"}
	}
	title := telegram.Text(lang, keys[0])
	text := telegram.Text(lang, keys[1])

	ov, err := h.content.GetContentOverride(ctx, lang, screen)
	if err != nil {
		h.log.Warn("content override lookup failed", sl.Err(err))
	} else if ov != nil {
		if ov.Title != "" {
			title = ov.Title
		}
		if ov.Text != "" {
			text = ov.Text
		}
	}
	if len(text) > 900 {
		text = text[:900]
	}

	msg := fmt.Sprintf("🧩 Контент — <b>%s</b> [%s]\n\n<b>Заголовок:</b> <code>%s</code>\n<b>Текст:</b>\n<code>%s</code>",
		screen, strings.ToUpper(lang), html.EscapeString(title), html.EscapeString(text))
	h.edit(cq, msg, kbContentEditor(lang, screen))
}

func (h *Handler) promptContentText(cq *tgbotapi.CallbackQuery, lang, screen string) {
	if err := h.sessions.Set(cq.From.ID, &AdminSession{State: StateContentText, Lang: lang, Screen: screen}); err != nil {
		h.log.Error("failed to save admin session", sl.Err(err))
	}
	h.edit(cq, fmt.Sprintf("📝 Пришлите новый текст для [%s / %s].", strings.ToUpper(lang), screen),
		kbCancel(fmt.Sprintf("adm:content:screen:%s:%s", lang, screen)))
	h.answer(cq)
}

func (h *Handler) resetContentText(ctx context.Context, cq *tgbotapi.CallbackQuery, lang, screen string) {
	if err := h.content.DeleteContentOverride(ctx, lang, screen); err != nil {
		h.log.Error("failed to delete content override", sl.Err(err))
	}
	h.showContentScreen(ctx, cq, lang, screen)
	_, _ = h.bot.Request(tgbotapi.NewCallback(cq.ID, "Текст сброшен к дефолту."))
}

// --- параметры

func (h *Handler) showParams(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	fdep, err := h.settings.FirstDepositMin(ctx)
	if err != nil {
		h.log.Error("failed to read first deposit min", sl.Err(err))
	}
	plat, err := h.settings.PlatinumThreshold(ctx)
	if err != nil {
		h.log.Error("failed to read platinum threshold", sl.Err(err))
	}
	subOn, _ := h.settings.CheckSubscriptionEnabled(ctx)
	depOn, _ := h.settings.CheckDepositEnabled(ctx)
	regOn, _ := h.settings.CheckRegistrationEnabled(ctx)

	mark := func(v bool) string {
		if v {
			return "✅"
		}
		return "❌"
	}
	lock := "🔓"
	if regOn {
		lock = "🔒"
	}
	text := fmt.Sprintf(
		"⚙️ <b>Параметры</b>\n\n"+
			"%s Проверка подписки   |  💵 Мин. деп: <b>$%.0f</b>\n"+
			"%s Проверка депозита   |  💎 Порог Platinum: <b>$%.0f</b>\n"+
			"%s Регистрация",
		mark(subOn), fdep, mark(depOn), plat, lock)
	h.edit(cq, text, kbParams(subOn, depOn))
	h.answer(cq)
}

func (h *Handler) toggleParam(ctx context.Context, cq *tgbotapi.CallbackQuery, which string) {
	keys := map[string]string{
		"sub": settings.KeyCheckSubscription,
		"dep": settings.KeyCheckDeposit,
	}
	key, ok := keys[which]
	if !ok {
		h.alert(cq, "Регистрация — обязательное условие и не может быть отключена.")
		return
	}
	cur, err := h.settings.GetValue(ctx, key, "1")
	if err != nil {
		h.log.Error("failed to read gate flag", sl.Err(err))
		h.answer(cq)
		return
	}
	enabled := false
	switch strings.ToLower(strings.TrimSpace(cur)) {
	case "1", "true", "yes", "on":
		enabled = true
	}
	if err := h.settings.SetBool(ctx, key, !enabled); err != nil {
		h.log.Error("failed to toggle gate flag", sl.Err(err))
	}
	h.showParams(ctx, cq)
}

func (h *Handler) promptParam(cq *tgbotapi.CallbackQuery, what string) {
	label := "порог Platinum ($)"
	if what == "firstdep" {
		label = "минимальный депозит ($)"
	}
	if err := h.sessions.Set(cq.From.ID, &AdminSession{State: StateParamValue, Param: what}); err != nil {
		h.log.Error("failed to save admin session", sl.Err(err))
	}
	h.edit(cq, fmt.Sprintf("Введите %s числом:", label), kbCancel("adm:params"))
	h.answer(cq)
}

// --- рассылка

func (h *Handler) showBroadcast(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	seg := h.sessions.Segment(cq.From.ID)
	h.edit(cq, fmt.Sprintf("📣 Рассылка\nСегмент: %s", seg), kbBroadcast())
	h.answer(cq)
}

func (h *Handler) pickSegment(cq *tgbotapi.CallbackQuery, segment string) {
	if err := h.sessions.SetSegment(cq.From.ID, segment); err != nil {
		h.log.Error("failed to save broadcast segment", sl.Err(err))
	}
	_, _ = h.bot.Request(tgbotapi.NewCallback(cq.ID, "Сегмент выбран: "+segment))
}

func (h *Handler) promptBroadcastText(cq *tgbotapi.CallbackQuery) {
	if err := h.sessions.Set(cq.From.ID, &AdminSession{State: StateBcastText}); err != nil {
		h.log.Error("failed to save admin session", sl.Err(err))
	}
	h.edit(cq, "Пришлите текст рассылки:", kbCancel("adm:broadcast"))
	h.answer(cq)
}

func (h *Handler) promptBroadcastPhoto(cq *tgbotapi.CallbackQuery) {
	if err := h.sessions.Set(cq.From.ID, &AdminSession{State: StateBcastPhoto}); err != nil {
		h.log.Error("failed to save admin session", sl.Err(err))
	}
	h.edit(cq, "Пришлите фото (как изображение):", kbCancel("adm:broadcast"))
	h.answer(cq)
}

func (h *Handler) runBroadcast(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	seg := h.sessions.Segment(cq.From.ID)
	text, err := h.settings.BroadcastText(ctx)
	if err != nil {
		h.log.Error("failed to read broadcast text", sl.Err(err))
		h.answer(cq)
		return
	}
	photo, err := h.settings.BroadcastPhoto(ctx)
	if err != nil {
		h.log.Error("failed to read broadcast photo", sl.Err(err))
		h.answer(cq)
		return
	}

	queued, err := h.broadcaster.Enqueue(ctx, seg, text, photo)
	if err != nil {
		h.log.Error("failed to enqueue broadcast", sl.Err(err))
		h.alert(cq, "Не удалось запустить рассылку")
		return
	}
	h.alert(cq, fmt.Sprintf("В очередь поставлено: %d", queued))
}

// --- статистика

func (h *Handler) showStats(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	stats, err := h.repo.GetFunnelStats(ctx)
	if err != nil {
		h.log.Error("failed to read funnel stats", sl.Err(err))
		h.answer(cq)
		return
	}
	text := fmt.Sprintf(
		"📊 <b>Статистика</b>\n\nЮзеров: %d\nПодписались: %d\nС регой: %d\nС депозитом: %d\nПлатинум: %d",
		stats.Total, stats.Subscribed, stats.Registered, stats.Deposited, stats.Platinum)
	h.edit(cq, text, kbMenu())
	h.answer(cq)
}

// --- ожидание ввода

// HandleMessage обрабатывает сообщение администратора, если для него
// открыта сессия ожидания ввода. Возвращает false, если ввод не ожидался.
func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) bool {
	if !h.isAdmin(msg.From.ID) {
		return false
	}
	session, err := h.sessions.Get(msg.From.ID)
	if err != nil {
		h.log.Warn("failed to read admin session", sl.Err(err))
		return false
	}
	if session == nil {
		return false
	}

	switch session.State {
	case StateLinkValue:
		h.applyLinkValue(ctx, msg, session)
	case StateContentText:
		h.applyContentText(ctx, msg, session)
	case StateParamValue:
		h.applyParamValue(ctx, msg, session)
	case StateBcastText:
		if err := h.settings.SetBroadcastText(ctx, msg.Text); err != nil {
			h.log.Error("failed to save broadcast text", sl.Err(err))
			return true
		}
		h.reply(msg.Chat.ID, "✅ Текст сохранён. /admin → Рассылка")
		_ = h.sessions.Clear(msg.From.ID)
	case StateBcastPhoto:
		if len(msg.Photo) == 0 {
			h.reply(msg.Chat.ID, "Нужно фото (как изображение).")
			return true
		}
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		if err := h.settings.SetBroadcastPhoto(ctx, fileID); err != nil {
			h.log.Error("failed to save broadcast photo", sl.Err(err))
			return true
		}
		h.reply(msg.Chat.ID, "✅ Фото сохранено. /admin → Рассылка")
		_ = h.sessions.Clear(msg.From.ID)
	default:
		return false
	}
	return true
}

func (h *Handler) applyLinkValue(ctx context.Context, msg *tgbotapi.Message, session *AdminSession) {
	val := strings.TrimSpace(msg.Text)
	if session.Key == "" {
		h.reply(msg.Chat.ID, "Неизвестный ключ")
		_ = h.sessions.Clear(msg.From.ID)
		return
	}
	if err := h.settings.SetValue(ctx, session.Key, val); err != nil {
		h.log.Error("failed to save config value", sl.Err(err))
		return
	}
	h.reply(msg.Chat.ID, "✅ Сохранено")
	m := tgbotapi.NewMessage(msg.Chat.ID, h.linksText(ctx))
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = kbLinks()
	_, _ = h.bot.Send(m)
	_ = h.sessions.Clear(msg.From.ID)
}

func (h *Handler) applyContentText(ctx context.Context, msg *tgbotapi.Message, session *AdminSession) {
	if err := h.content.UpsertContentText(ctx, session.Lang, session.Screen, msg.Text); err != nil {
		h.log.Error("failed to save content override", sl.Err(err))
		return
	}
	h.reply(msg.Chat.ID, "✅ Текст сохранён. /admin → Контент, чтобы посмотреть.")
	_ = h.sessions.Clear(msg.From.ID)
}

func (h *Handler) applyParamValue(ctx context.Context, msg *tgbotapi.Message, session *AdminSession) {
	raw := strings.ReplaceAll(strings.TrimSpace(msg.Text), ",", ".")
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val <= 0 {
		h.reply(msg.Chat.ID, "Нужно число больше 0. Попробуйте ещё раз.")
		return
	}
	key := settings.KeyPlatinumThreshold
	if session.Param == "firstdep" {
		key = settings.KeyFirstDepositMin
	}
	if err := h.settings.SetValue(ctx, key, strconv.FormatFloat(val, 'f', -1, 64)); err != nil {
		h.log.Error("failed to save parameter", sl.Err(err))
		return
	}
	h.reply(msg.Chat.ID, "✅ Сохранено. /admin → Параметры")
	_ = h.sessions.Clear(msg.From.ID)
}
