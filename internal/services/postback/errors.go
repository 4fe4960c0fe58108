package postback

import "errors"

// Терминальные ошибки обработки постбэка. Ничего не ретраится внутри:
// партнёрская сеть сама повторяет запросы на не-2xx ответы.
var (
	// ErrUnauthorized токен не совпал с секретом, состояние не тронуто.
	ErrUnauthorized = errors.New("postback: forbidden")
	// ErrBadRequest отсутствует обязательный click_id.
	ErrBadRequest = errors.New("postback: missing click_id")
	// ErrNotFound click_id не привязан ни к одному пользователю.
	ErrNotFound = errors.New("postback: user not found")
)
