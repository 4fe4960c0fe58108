package telegram

// Ключи экранов для контентных оверрайдов и картинок.
const (
	ScreenMain        = "main"
	ScreenInstruction = "instruction"
	ScreenLangs       = "langs"
	ScreenSubscribe   = "subscribe"
	ScreenRegister    = "register"
	ScreenDeposit     = "deposit"
	ScreenAccess      = "access"
	ScreenPlatinum    = "platinum"
)

// defaultTexts локализованные строки по умолчанию. Отсутствующий язык
// падает на английский, отсутствующий ключ возвращается как есть.
var defaultTexts = map[string]map[string]string{
	"main_title": {
		"en": "Main menu",
		"ru": "Главное меню",
	},
	"main_desc": {
		"en": "Choose an action below.",
		"ru": "Выберите действие ниже.",
	},
	"lang_title": {
		"en": "Choose your language",
		"ru": "Выберите язык",
	},
	"instruction_title": {
		"en": "How to start",
		"ru": "Как начать",
	},
	"instruction_text": {
		"en": "1) Register a broker account with the button below.\n" +
			"2) Wait for the automatic registration check, the bot will notify you.\n" +
			"3) After the check passes, follow the steps.\n" +
			"4) Press \"Get signal\".\n" +
			"5) Pick a trading instrument in the first row of the bot interface.\n" +
			"6) Pick the same instrument at the broker.\n" +
			"7) Pick any expiration time and set the same one at the broker.\n" +
			"8) Press \"Generate signal\" and trade strictly by the bot analytics.\n" +
			"9) Take profit.",
		"ru": "1) Зарегистрируйте аккаунт у брокера по кнопке ниже.\n" +
			"2) Дождитесь автоматической проверки регистрации, бот пришлёт уведомление.\n" +
			"3) После успешной проверки следуйте шагам.\n" +
			"4) Нажмите «Получить сигнал».\n" +
			"5) Выберите инструмент в первой строке интерфейса бота.\n" +
			"6) Выберите тот же инструмент у брокера.\n" +
			"7) Выберите любое время экспирации и установите такое же у брокера.\n" +
			"8) Нажмите «Сгенерировать сигнал» и торгуйте строго по аналитике бота.\n" +
			"9) Забирайте профит.",
	},
	"subscribe_title": {
		"en": "Step 1 — Channel subscription",
		"ru": "Шаг 1 — Подписка на канал",
	},
	"subscribe_text": {
		"en": "Subscribe to our channel and come back to the bot.",
		"ru": "Подпишитесь на наш канал и вернитесь в бота.",
	},
	"sub_not_yet": {
		"en": "Can't see your subscription yet. Join the channel and try again.",
		"ru": "Подписка пока не видна. Вступите в канал и попробуйте снова.",
	},
	"register_title": {
		"en": "Step 2 — Registration",
		"ru": "Шаг 2 — Регистрация",
	},
	"register_text": {
		"en": "Register with the broker using the button below.",
		"ru": "Зарегистрируйтесь у брокера по кнопке ниже.",
	},
	"already_registered": {
		"en": "You are already registered ✅",
		"ru": "Вы уже зарегистрированы ✅",
	},
	"deposit_title": {
		"en": "Step 3 — Deposit",
		"ru": "Шаг 3 — Депозит",
	},
	"deposit_text": {
		"en": "Make your first deposit using the button below.",
		"ru": "Внесите первый депозит по кнопке ниже.",
	},
	"deposit_need": {
		"en": "Required",
		"ru": "Нужно внести",
	},
	"deposit_paid": {
		"en": "Paid",
		"ru": "Внесено",
	},
	"deposit_left": {
		"en": "Remaining",
		"ru": "Осталось внести",
	},
	"access_title": {
		"en": "Access granted",
		"ru": "Доступ открыт",
	},
	"access_text": {
		"en": "You have completed all the steps. Open the mini-app.",
		"ru": "Все шаги пройдены. Откройте mini-app.",
	},
	"platinum_title": {
		"en": "Congratulations! Platinum",
		"ru": "Поздравляем! Platinum",
	},
	"platinum_text": {
		"en": "Your total deposits reached the threshold. The VIP mini-app is available.",
		"ru": "Сумма ваших депозитов достигла порога. VIP mini-app доступна.",
	},
	"btn_instruction": {
		"en": "📘 Instructions",
		"ru": "📘 Инструкция",
	},
	"btn_support": {
		"en": "🆘 Support",
		"ru": "🆘 Поддержка",
	},
	"btn_get_signal": {
		"en": "🚀 Get signal",
		"ru": "🚀 Получить сигнал",
	},
	"btn_open_miniapp": {
		"en": "🔓 Open access",
		"ru": "🔓 Открыть доступ",
	},
	"btn_open_vip_miniapp": {
		"en": "👑 Open PLATINUM",
		"ru": "👑 Открыть PLATINUM",
	},
	"btn_register": {
		"en": "📝 Register",
		"ru": "📝 Регистрация",
	},
	"btn_ive_subscribed": {
		"en": "🔄 I've subscribed",
		"ru": "🔄 Я подписался",
	},
	"btn_deposit": {
		"en": "💳 Deposit",
		"ru": "💳 Депозит",
	},
	"btn_menu": {
		"en": "↩️ Main menu",
		"ru": "↩️ Главное меню",
	},
}

// SupportedLanguages языки, доступные на экране выбора языка.
var SupportedLanguages = []string{"ru", "en", "hi", "es"}

// IsSupportedLanguage проверяет код языка из callback setlang.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Text возвращает дефолтную строку key на языке lang.
func Text(lang, key string) string {
	byLang, ok := defaultTexts[key]
	if !ok {
		return key
	}
	if v, ok := byLang[lang]; ok {
		return v
	}
	return byLang["en"]
}
