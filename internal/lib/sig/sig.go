// Package sig подписывает редирект-ссылки воронки HMAC-SHA256.
// Подпись строится над строкой "{kind}:{clickID}" на текущем секрете постбэков,
// проверка выполняется сравнением, устойчивым к атакам по времени.
package sig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Виды подписываемых ссылок.
const (
	KindRegistration = "reg"
	KindDeposit      = "dep"
)

// Sign возвращает hex-подпись для пары (kind, clickID).
func Sign(secret, kind, clickID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(kind + ":" + clickID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify проверяет подпись константным по времени сравнением.
func Verify(secret, kind, clickID, signature string) bool {
	expected := Sign(secret, kind, clickID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
