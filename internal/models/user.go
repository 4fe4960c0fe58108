// Package models содержит доменные модели пользователя воронки,
// контентных оверрайдов и записей конфигурации. Структуры используются
// в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Когорты пользователей. Когорта B получает альтернативные партнёрские
// ссылки и никогда не показывается в админке.
const (
	GroupA = "A"
	GroupB = "B"
)

// User представляет пользователя воронки, один на telegram-аккаунт.
type User struct {
	ID               int64     // Внутренний идентификатор
	TelegramID       int64     // Telegram id, уникальный
	Language         string    // Язык интерфейса, пустой до выбора
	Group            string    // Когорта A/B, неизменна после создания
	ClickID          string    // Сквозной идентификатор для партнёрки, генерируется один раз
	TraderID         string    // Внешний id трейдера, пишется один раз
	IsSubscribed     bool      // Подписан на канал
	IsRegistered     bool      // Зарегистрирован у партнёрки
	HasDeposit       bool      // Достиг минимального депозита
	TotalDeposits    float64   // Накопленная сумма депозитов
	IsPlatinum       bool      // Достиг порога Platinum
	AccessNotified   bool      // Экран доступа уже показан
	PlatinumNotified bool      // Экран Platinum уже показан
	LastBotMessageID int64     // Последнее отправленное ботом сообщение, 0 если нет
	CreatedAt        time.Time // Время создания
}

// DepositProgress прогресс пользователя к минимальному депозиту.
type DepositProgress struct {
	Needed    float64 `json:"needed"`
	Paid      float64 `json:"paid"`
	Remaining float64 `json:"remaining"`
}

// Progress считает прогресс к минимальному депозиту need.
func (u *User) Progress(need float64) DepositProgress {
	remaining := need - u.TotalDeposits
	if remaining < 0 {
		remaining = 0
	}
	return DepositProgress{Needed: need, Paid: u.TotalDeposits, Remaining: remaining}
}

// FunnelStats агрегаты по когорте A для экрана статистики.
type FunnelStats struct {
	Total      int
	Subscribed int
	Registered int
	Deposited  int
	Platinum   int
}
