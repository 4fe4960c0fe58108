package admin

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func kbMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Пользователи", "adm:users:1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Настройка постбэков", "adm:postbacks"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧩 Контент", "adm:content"),
			tgbotapi.NewInlineKeyboardButtonData("🔗 Ссылки", "adm:links"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Параметры", "adm:params"),
			tgbotapi.NewInlineKeyboardButtonData("📣 Рассылка", "adm:broadcast"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "adm:stats"),
		),
	)
}

// kbUsersList список пользователей когорты A, B сюда не попадает.
func kbUsersList(items [][2]string, page int, hasPrev, hasNext bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(it[1], "adm:user:"+it[0]),
		))
	}
	var nav []tgbotapi.InlineKeyboardButton
	if hasPrev {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️", fmt.Sprintf("adm:users:%d", page-1)))
	}
	if hasNext {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("▶️", fmt.Sprintf("adm:users:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func kbUserCard(tgID int64, isReg, hasDep, isPlatinum bool) tgbotapi.InlineKeyboardMarkup {
	regLabel := "Выдать регистрацию ✅"
	if isReg {
		regLabel = "Снять регистрацию ❌"
	}
	depLabel := "Выдать депозит ✅"
	if hasDep {
		depLabel = "Снять депозит ❌"
	}
	platLabel := "Выдать Platinum 💎"
	if isPlatinum {
		platLabel = "Снять Platinum •"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(regLabel, fmt.Sprintf("adm:user:toggle:reg:%d", tgID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(depLabel, fmt.Sprintf("adm:user:toggle:dep:%d", tgID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(platLabel, fmt.Sprintf("adm:user:toggle:plat:%d", tgID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К списку", "adm:users:1"),
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
		),
	)
}

// kbLinks редактор ссылок. Показываются только ссылки когорты A.
func kbLinks() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить реф-ссылку", "adm:links:edit:REF_REG_A"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить ссылку депозита", "adm:links:edit:REF_DEP_A"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить канал (ID)", "adm:links:edit:CHANNEL_ID"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить Channel URL", "adm:links:edit:CHANNEL_URL"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изменить Support URL", "adm:links:edit:SUPPORT_URL"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
		),
	)
}

func kbContentLang() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Русский", "adm:content:lang:ru"),
			tgbotapi.NewInlineKeyboardButtonData("English", "adm:content:lang:en"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("हिंदी", "adm:content:lang:hi"),
			tgbotapi.NewInlineKeyboardButtonData("Español", "adm:content:lang:es"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
		),
	)
}

var contentScreens = []string{"main", "instruction", "subscribe", "register", "deposit", "access", "platinum"}

func kbContentScreens(lang string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, name := range contentScreens {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, fmt.Sprintf("adm:content:screen:%s:%s", lang, name)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func kbContentEditor(lang, screen string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Изменить текст", fmt.Sprintf("adm:content:edit_text:%s:%s", lang, screen)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Сбросить текст", fmt.Sprintf("adm:content:reset_text:%s:%s", lang, screen)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm:content:lang:"+lang),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
		),
	)
}

func kbParams(subOn, depOn bool) tgbotapi.InlineKeyboardMarkup {
	subLabel := "❌ Проверка подписки"
	if subOn {
		subLabel = "✅ Проверка подписки"
	}
	depLabel := "❌ Проверка депозита"
	if depOn {
		depLabel = "✅ Проверка депозита"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔒 Регистрация", "adm:param:locked:reg"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(subLabel, "adm:param:toggle:sub"),
			tgbotapi.NewInlineKeyboardButtonData("💵 Мин. деп", "adm:param:set:firstdep"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(depLabel, "adm:param:toggle:dep"),
			tgbotapi.NewInlineKeyboardButtonData("💎 Порог Platinum", "adm:param:set:platinum"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
		),
	)
}

func kbBroadcast() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Всем", "adm:bcast:seg:all"),
			tgbotapi.NewInlineKeyboardButtonData("С регистрацией", "adm:bcast:seg:reg"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("С депозитом", "adm:bcast:seg:dep"),
			tgbotapi.NewInlineKeyboardButtonData("Только /start", "adm:bcast:seg:start"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Задать текст", "adm:bcast:text"),
			tgbotapi.NewInlineKeyboardButtonData("🖼️ Прикрепить фото", "adm:bcast:photo"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Запустить", "adm:bcast:go"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", "adm:menu"),
		),
	)
}

func kbCancel(backCb string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Отмена", backCb),
		),
	)
}
