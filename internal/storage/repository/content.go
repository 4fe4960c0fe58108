package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/funnel-bot/internal/models"
)

// GetContentOverride возвращает оверрайд экрана или nil, если его нет.
func (s *Storage) GetContentOverride(ctx context.Context, lang, screen string) (*models.ContentOverride, error) {
	const op = "storage.GetContentOverride"

	ov := &models.ContentOverride{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, lang, screen, COALESCE(title, ''), COALESCE(text, '')
		 FROM content_overrides WHERE lang = $1 AND screen = $2`,
		lang, screen).Scan(&ov.ID, &ov.Lang, &ov.Screen, &ov.Title, &ov.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ov, nil
}

// UpsertContentText сохраняет текстовый оверрайд экрана.
func (s *Storage) UpsertContentText(ctx context.Context, lang, screen, text string) error {
	const op = "storage.UpsertContentText"

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO content_overrides (lang, screen, text) VALUES ($1, $2, $3)
		 ON CONFLICT (lang, screen) DO UPDATE SET text = EXCLUDED.text`,
		lang, screen, text)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteContentOverride удаляет оверрайд экрана, возвращая дефолтный текст.
func (s *Storage) DeleteContentOverride(ctx context.Context, lang, screen string) error {
	const op = "storage.DeleteContentOverride"

	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM content_overrides WHERE lang = $1 AND screen = $2`, lang, screen)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListButtonOverrides возвращает все оверрайды подписей кнопок.
func (s *Storage) ListButtonOverrides(ctx context.Context) ([]models.ButtonOverride, error) {
	const op = "storage.ListButtonOverrides"

	rows, err := s.DB.QueryContext(ctx, `SELECT lang, key, text FROM btn_overrides`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.ButtonOverride
	for rows.Next() {
		var b models.ButtonOverride
		if err = rows.Scan(&b.Lang, &b.Key, &b.Text); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertButtonText сохраняет оверрайд подписи кнопки.
func (s *Storage) UpsertButtonText(ctx context.Context, lang, key, text string) error {
	const op = "storage.UpsertButtonText"

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO btn_overrides (lang, key, text) VALUES ($1, $2, $3)
		 ON CONFLICT (lang, key) DO UPDATE SET text = EXCLUDED.text`,
		lang, key, text)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteButtonText удаляет оверрайд подписи кнопки.
func (s *Storage) DeleteButtonText(ctx context.Context, lang, key string) error {
	const op = "storage.DeleteButtonText"

	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM btn_overrides WHERE lang = $1 AND key = $2`, lang, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
