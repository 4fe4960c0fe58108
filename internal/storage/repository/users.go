package repository

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/funnel-bot/internal/models"
)

// ErrUserNotFound возвращается, когда пользователь не найден в реестре.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, telegram_id, COALESCE(language, ''), group_ab,
	      COALESCE(click_id, ''), COALESCE(trader_id, ''),
	      is_subscribed, is_registered, has_deposit, total_deposits, is_platinum,
	      access_notified, platinum_notified, COALESCE(last_bot_message_id, 0), created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Language, &u.Group,
		&u.ClickID, &u.TraderID,
		&u.IsSubscribed, &u.IsRegistered, &u.HasDeposit, &u.TotalDeposits, &u.IsPlatinum,
		&u.AccessNotified, &u.PlatinumNotified, &u.LastBotMessageID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByTelegramID возвращает пользователя по telegram id.
func (s *Storage) GetUserByTelegramID(ctx context.Context, tgID int64) (*models.User, error) {
	const op = "storage.GetUserByTelegramID"

	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, tgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByClickID возвращает пользователя по click id.
func (s *Storage) GetUserByClickID(ctx context.Context, clickID string) (*models.User, error) {
	const op = "storage.GetUserByClickID"

	query := `SELECT ` + userColumns + ` FROM users WHERE click_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, clickID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetOrCreateUser возвращает пользователя или создаёт нового.
// Когорта назначается при создании: каждый третий пользователь по счёту
// попадает в группу B, остальные в A. Когорта неизменна после вставки.
func (s *Storage) GetOrCreateUser(ctx context.Context, tgID int64) (*models.User, error) {
	const op = "storage.GetOrCreateUser"

	u, err := s.GetUserByTelegramID(ctx, tgID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users (telegram_id, group_ab)
			  SELECT $1, CASE WHEN (COUNT(*) + 1) % 3 = 0 THEN 'B' ELSE 'A' END
			  FROM users
			  ON CONFLICT (telegram_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, tgID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetUserByTelegramID(ctx, tgID)
}

// GenClickID генерирует новый click id (uuid4 в hex без дефисов).
func GenClickID() string {
	id := uuid.New()
	return strings.ToLower(hex.EncodeToString(id[:]))
}

// EnsureClickID присваивает пользователю click id, если его ещё нет.
// Условный UPDATE делает операцию идемпотентной: повторный вызов
// или гонка двух запросов никогда не перезапишет уже выданный id.
func (s *Storage) EnsureClickID(ctx context.Context, userID int64) (string, error) {
	const op = "storage.EnsureClickID"

	query := `UPDATE users SET click_id = $2
			  WHERE id = $1 AND (click_id IS NULL OR click_id = '')`
	if _, err := s.DB.ExecContext(ctx, query, userID, GenClickID()); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var clickID string
	if err := s.DB.QueryRowContext(ctx,
		`SELECT click_id FROM users WHERE id = $1`, userID).Scan(&clickID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return clickID, nil
}

// SetLanguage сохраняет выбранный язык пользователя.
func (s *Storage) SetLanguage(ctx context.Context, userID int64, lang string) error {
	const op = "storage.SetLanguage"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET language = $2 WHERE id = $1`, userID, lang)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSubscribed выставляет флаг подписки на канал.
func (s *Storage) SetSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	const op = "storage.SetSubscribed"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_subscribed = $2 WHERE id = $1`, userID, subscribed)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkRegistered выставляет is_registered и сообщает, была ли это первая установка.
// Повторные регистрационные события становятся no-op.
func (s *Storage) MarkRegistered(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.MarkRegistered"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_registered = TRUE WHERE id = $1 AND is_registered = FALSE`, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// SetTraderIDIfEmpty записывает trader id, только если он ещё пуст
// (первый пишущий выигрывает, ретраи идемпотентны).
func (s *Storage) SetTraderIDIfEmpty(ctx context.Context, userID int64, traderID string) (bool, error) {
	const op = "storage.SetTraderIDIfEmpty"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET trader_id = $2
		 WHERE id = $1 AND (trader_id IS NULL OR trader_id = '')`, userID, traderID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// AddDeposit атомарно прибавляет amount к накопленной сумме депозитов
// и возвращает новую сумму. Инкремент фиксируется до любых последующих
// действий, чтобы сбой дальше по цепочке не потерял деньги.
func (s *Storage) AddDeposit(ctx context.Context, userID int64, amount float64) (float64, error) {
	const op = "storage.AddDeposit"

	var total float64
	err := s.DB.QueryRowContext(ctx,
		`UPDATE users SET total_deposits = total_deposits + $2
		 WHERE id = $1
		 RETURNING total_deposits`, userID, amount).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// MarkHasDeposit выставляет has_deposit, сообщая о первой установке.
func (s *Storage) MarkHasDeposit(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.MarkHasDeposit"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET has_deposit = TRUE WHERE id = $1 AND has_deposit = FALSE`, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// SetPlatinumIfEligible выставляет is_platinum, если накопленная сумма
// достигла порога. Возвращает true только при первом переходе.
func (s *Storage) SetPlatinumIfEligible(ctx context.Context, userID int64, threshold float64) (bool, error) {
	const op = "storage.SetPlatinumIfEligible"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_platinum = TRUE
		 WHERE id = $1 AND is_platinum = FALSE AND total_deposits >= $2`, userID, threshold)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// MarkAccessNotified атомарно переводит access_notified из false в true.
// Возвращает true только победителю: условный UPDATE закрывает гонку
// check-then-act между конкурентными обработками одного пользователя,
// так что уведомление о доступе уходит не более одного раза.
func (s *Storage) MarkAccessNotified(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.MarkAccessNotified"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET access_notified = TRUE WHERE id = $1 AND access_notified = FALSE`, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// MarkPlatinumNotified атомарно переводит platinum_notified из false в true,
// тем же условным UPDATE, что и MarkAccessNotified.
func (s *Storage) MarkPlatinumNotified(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.MarkPlatinumNotified"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET platinum_notified = TRUE WHERE id = $1 AND platinum_notified = FALSE`, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// ToggleRegistered инвертирует is_registered из админки. Снятие регистрации
// заново открывает воронку: сбрасывает access_notified.
func (s *Storage) ToggleRegistered(ctx context.Context, tgID int64) error {
	const op = "storage.ToggleRegistered"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_registered = NOT is_registered,
			 access_notified = CASE WHEN is_registered THEN FALSE ELSE access_notified END
		 WHERE telegram_id = $1 AND group_ab = 'A'`, tgID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ToggleHasDeposit инвертирует has_deposit из админки, со сбросом
// access_notified при снятии депозита.
func (s *Storage) ToggleHasDeposit(ctx context.Context, tgID int64) error {
	const op = "storage.ToggleHasDeposit"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET has_deposit = NOT has_deposit,
			 access_notified = CASE WHEN has_deposit THEN FALSE ELSE access_notified END
		 WHERE telegram_id = $1 AND group_ab = 'A'`, tgID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TogglePlatinum инвертирует is_platinum из админки, со сбросом
// platinum_notified при снятии платины.
func (s *Storage) TogglePlatinum(ctx context.Context, tgID int64) error {
	const op = "storage.TogglePlatinum"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_platinum = NOT is_platinum,
			 platinum_notified = CASE WHEN is_platinum THEN FALSE ELSE platinum_notified END
		 WHERE telegram_id = $1 AND group_ab = 'A'`, tgID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetLastBotMessageID запоминает последнее отправленное ботом сообщение.
func (s *Storage) SetLastBotMessageID(ctx context.Context, userID int64, messageID int64) error {
	const op = "storage.SetLastBotMessageID"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET last_bot_message_id = $2 WHERE id = $1`, userID, messageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByTelegramIDGroupA возвращает пользователя когорты A для админки.
// Когорта B для админ-поверхности не существует.
func (s *Storage) GetUserByTelegramIDGroupA(ctx context.Context, tgID int64) (*models.User, error) {
	const op = "storage.GetUserByTelegramIDGroupA"

	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1 AND group_ab = 'A'`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, tgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Сегменты выборки для списков и рассылок.
const (
	SegmentAll        = "all"
	SegmentRegistered = "reg"
	SegmentDeposited  = "dep"
	SegmentStart      = "start"
)

func segmentCondition(segment string) string {
	switch segment {
	case SegmentRegistered:
		return " AND is_registered = TRUE"
	case SegmentDeposited:
		return " AND has_deposit = TRUE"
	case SegmentStart:
		return " AND is_registered = FALSE AND has_deposit = FALSE"
	default:
		return ""
	}
}

// ListUsersGroupA возвращает страницу пользователей когорты A по сегменту,
// свежие первыми.
func (s *Storage) ListUsersGroupA(ctx context.Context, segment string, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsersGroupA"

	query := `SELECT ` + userColumns + ` FROM users WHERE group_ab = 'A'` +
		segmentCondition(segment) + ` ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		if err = rows.Scan(&u.ID, &u.TelegramID, &u.Language, &u.Group,
			&u.ClickID, &u.TraderID,
			&u.IsSubscribed, &u.IsRegistered, &u.HasDeposit, &u.TotalDeposits, &u.IsPlatinum,
			&u.AccessNotified, &u.PlatinumNotified, &u.LastBotMessageID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUsersGroupA возвращает количество пользователей когорты A по сегменту.
func (s *Storage) CountUsersGroupA(ctx context.Context, segment string) (int, error) {
	const op = "storage.CountUsersGroupA"

	var total int
	query := `SELECT COUNT(*) FROM users WHERE group_ab = 'A'` + segmentCondition(segment)
	if err := s.DB.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// GetFunnelStats возвращает агрегаты воронки по когорте A.
func (s *Storage) GetFunnelStats(ctx context.Context) (*models.FunnelStats, error) {
	const op = "storage.GetFunnelStats"

	query := `SELECT COUNT(*),
			      COUNT(*) FILTER (WHERE is_subscribed),
			      COUNT(*) FILTER (WHERE is_registered),
			      COUNT(*) FILTER (WHERE has_deposit),
			      COUNT(*) FILTER (WHERE is_platinum)
			  FROM users
			  WHERE group_ab = 'A'`
	stats := &models.FunnelStats{}
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Subscribed,
		&stats.Registered, &stats.Deposited, &stats.Platinum); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
