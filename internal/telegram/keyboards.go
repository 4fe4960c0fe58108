package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ButtonTexts источник подписей кнопок с учётом оверрайдов из админки.
type ButtonTexts interface {
	ButtonText(ctx context.Context, lang, key, def string) string
}

// Keyboards строит инлайн-клавиатуры экранов. Подписи кнопок берутся
// из оверрайдов, дефолты — из локализованных строк пакета.
type Keyboards struct {
	buttons    ButtonTexts
	miniApp    string
	miniAppVIP string
}

// NewKeyboards создаёт билдер клавиатур.
func NewKeyboards(buttons ButtonTexts, miniApp, miniAppVIP string) *Keyboards {
	return &Keyboards{buttons: buttons, miniApp: miniApp, miniAppVIP: miniAppVIP}
}

func (k *Keyboards) text(ctx context.Context, lang, key string) string {
	return k.buttons.ButtonText(ctx, lang, key, Text(lang, key))
}

func (k *Keyboards) openAccessButton(ctx context.Context, lang string, vip bool) tgbotapi.InlineKeyboardButton {
	url := k.miniApp
	label := k.text(ctx, lang, "btn_open_miniapp")
	if vip {
		url = k.miniAppVIP
		label = k.text(ctx, lang, "btn_open_vip_miniapp")
	}
	return tgbotapi.InlineKeyboardButton{Text: label, WebApp: &tgbotapi.WebAppInfo{URL: url}}
}

// Main главное меню. При открытом доступе вместо "получить сигнал"
// показывается кнопка mini-app.
func (k *Keyboards) Main(ctx context.Context, lang string, isPlatinum, canOpen bool, supportURL string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_instruction"), "instructions"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(k.text(ctx, lang, "btn_support"), supportURL),
		),
	}
	if canOpen {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(k.openAccessButton(ctx, lang, isPlatinum)))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_get_signal"), "get_signal"),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Instruction экран инструкции. Регистрация через callback, чтобы показать
// алерт уже зарегистрированному пользователю.
func (k *Keyboards) Instruction(ctx context.Context, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_register"), "btn_register"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_menu"), "menu"),
		),
	)
}

// Lang экран выбора языка.
func (k *Keyboards) Lang() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Русский", "setlang:ru"),
			tgbotapi.NewInlineKeyboardButtonData("English", "setlang:en"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("हिंदी", "setlang:hi"),
			tgbotapi.NewInlineKeyboardButtonData("Español", "setlang:es"),
		),
	)
}

// Subscribe экран подписки на канал.
func (k *Keyboards) Subscribe(ctx context.Context, lang, channelURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📣 Telegram", channelURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_ive_subscribed"), "check_sub"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_menu"), "menu"),
		),
	)
}

// Register экран регистрации с подписанной URL-кнопкой.
func (k *Keyboards) Register(ctx context.Context, lang, url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(k.text(ctx, lang, "btn_register"), url),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_menu"), "menu"),
		),
	)
}

// Deposit экран депозита с подписанной URL-кнопкой.
func (k *Keyboards) Deposit(ctx context.Context, lang, url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(k.text(ctx, lang, "btn_deposit"), url),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_menu"), "menu"),
		),
	)
}

// Access экран открытого доступа.
func (k *Keyboards) Access(ctx context.Context, lang string, vip bool) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(k.openAccessButton(ctx, lang, vip)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.text(ctx, lang, "btn_menu"), "menu"),
		),
	)
}
