package postback

import "strings"

// EventKind закрытый набор видов событий партнёрской сети.
// Неизвестные строки попадают в KindUnknown и безопасно пропускают
// ветки, специфичные для вида события.
type EventKind int

// Виды событий постбэков.
const (
	KindUnknown EventKind = iota
	KindRegistration
	KindDepositFirst
	KindDepositRepeat
	KindDeposit
)

// ParseEventKind разбирает строковый параметр event запроса.
func ParseEventKind(raw string) EventKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "reg", "registration":
		return KindRegistration
	case "dep_first":
		return KindDepositFirst
	case "dep_repeat":
		return KindDepositRepeat
	case "deposit", "dep":
		return KindDeposit
	default:
		return KindUnknown
	}
}

// IsRegistration сообщает, является ли событие регистрационным.
func (k EventKind) IsRegistration() bool {
	return k == KindRegistration
}

// IsDeposit сообщает, является ли событие депозитным.
func (k EventKind) IsDeposit() bool {
	return k == KindDepositFirst || k == KindDepositRepeat || k == KindDeposit
}

func (k EventKind) String() string {
	switch k {
	case KindRegistration:
		return "registration"
	case KindDepositFirst:
		return "dep_first"
	case KindDepositRepeat:
		return "dep_repeat"
	case KindDeposit:
		return "deposit"
	default:
		return "unknown"
	}
}

// Event входящее событие постбэка после разбора параметров запроса.
type Event struct {
	Kind     EventKind
	RawEvent string // исходное значение параметра event, эхо в ответе
	ClickID  string
	TraderID string
	Amount   float64
	Token    string
}
