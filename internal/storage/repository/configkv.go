package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetConfigValue читает значение ключа из таблицы config.
// Отсутствующий ключ не ошибка: возвращается ("", false, nil).
func (s *Storage) GetConfigValue(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.GetConfigValue"

	var value string
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM config WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

// SetConfigValue пишет/обновляет значение ключа в таблице config.
func (s *Storage) SetConfigValue(ctx context.Context, key, value string) error {
	const op = "storage.SetConfigValue"

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO config (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
