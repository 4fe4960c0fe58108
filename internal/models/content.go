package models

// ContentOverride переопределение заголовка/текста экрана для языка.
// Пустое поле означает "использовать дефолт"; удаление записи возвращает дефолт.
type ContentOverride struct {
	ID     int64
	Lang   string
	Screen string
	Title  string
	Text   string
}

// ButtonOverride переопределение подписи кнопки для языка.
type ButtonOverride struct {
	Lang string
	Key  string
	Text string
}

// BroadcastJob задание рассылки для одного пользователя, публикуется в очередь.
type BroadcastJob struct {
	TelegramID int64  `json:"telegram_id"`
	Text       string `json:"text"`
	PhotoID    string `json:"photo_id,omitempty"`
}
