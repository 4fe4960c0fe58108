// Package settings реализует хранилище рантайм-настроек воронки:
// типизированные геттеры поверх таблицы config со статическими дефолтами
// из файла конфигурации и сквозным (read-through) кэшем горячих ключей.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/funnel-bot/internal/config"
	"github.com/magabrotheeeer/funnel-bot/internal/lib/sl"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
)

// Ключи таблицы config.
const (
	KeyPbSecret          = "PB_SECRET"
	KeyRefRegA           = "REF_REG_A"
	KeyRefDepA           = "REF_DEP_A"
	KeyChannelID         = "CHANNEL_ID"
	KeyChannelURL        = "CHANNEL_URL"
	KeySupportURL        = "SUPPORT_URL"
	KeyPlatinumThreshold = "PLATINUM_THRESHOLD"
	KeyFirstDepositMin   = "FIRST_DEPOSIT_MIN"
	KeyCheckSubscription = "CHECK_SUBSCRIPTION"
	KeyCheckRegistration = "CHECK_REGISTRATION"
	KeyCheckDeposit      = "CHECK_DEPOSIT"
	KeyBcastText         = "BCAST_TEXT"
	KeyBcastPhoto        = "BCAST_PHOTO"
)

const cacheTTL = time.Minute

// ConfigRepository описывает доступ к таблице config и оверрайдам кнопок.
type ConfigRepository interface {
	GetConfigValue(ctx context.Context, key string) (string, bool, error)
	SetConfigValue(ctx context.Context, key, value string) error
	ListButtonOverrides(ctx context.Context) ([]models.ButtonOverride, error)
	UpsertButtonText(ctx context.Context, lang, key, text string) error
	DeleteButtonText(ctx context.Context, lang, key string) error
}

// Cache описывает методы кэширования значений.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service типизированный доступ к настройкам с кэшированием.
type Service struct {
	repo     ConfigRepository
	cache    Cache
	defaults *config.Config
	log      *slog.Logger
}

// New создает новый Service.
func New(repo ConfigRepository, cache Cache, defaults *config.Config, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, defaults: defaults, log: log}
}

func cacheKey(key string) string {
	return "settings:" + key
}

// GetValue читает значение ключа: кэш, затем БД; отсутствие ключа — дефолт.
func (s *Service) GetValue(ctx context.Context, key, def string) (string, error) {
	ck := cacheKey(key)
	var cached string
	if found, err := s.cache.Get(ck, &cached); err != nil {
		s.log.Warn("settings cache read failed", slog.String("key", key), sl.Err(err))
	} else if found {
		return cached, nil
	}

	value, ok, err := s.repo.GetConfigValue(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	if err := s.cache.Set(ck, value, cacheTTL); err != nil {
		s.log.Warn("settings cache write failed", slog.String("key", key), sl.Err(err))
	}
	return value, nil
}

// SetValue пишет значение ключа и инвалидирует кэш.
func (s *Service) SetValue(ctx context.Context, key, value string) error {
	if err := s.repo.SetConfigValue(ctx, key, value); err != nil {
		return err
	}
	if err := s.cache.Invalidate(cacheKey(key)); err != nil {
		s.log.Warn("settings cache invalidate failed", slog.String("key", key), sl.Err(err))
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// GetBool читает булев ключ; значения 1/true/yes/on трактуются как true.
func (s *Service) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	defStr := "0"
	if def {
		defStr = "1"
	}
	v, err := s.GetValue(ctx, key, defStr)
	if err != nil {
		return false, err
	}
	return parseBool(v), nil
}

// SetBool пишет булев ключ.
func (s *Service) SetBool(ctx context.Context, key string, value bool) error {
	v := "0"
	if value {
		v = "1"
	}
	return s.SetValue(ctx, key, v)
}

// GetFloat читает числовой ключ; пустое или нечисловое значение — дефолт.
func (s *Service) GetFloat(ctx context.Context, key string, def float64) (float64, error) {
	v, err := s.GetValue(ctx, key, "")
	if err != nil {
		return 0, err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return def, nil
	}
	return f, nil
}

// PbSecret текущий секрет постбэков.
func (s *Service) PbSecret(ctx context.Context) (string, error) {
	return s.GetValue(ctx, KeyPbSecret, s.defaults.PostbackSecret)
}

// RefRegA регистрационная ссылка когорты A.
func (s *Service) RefRegA(ctx context.Context) (string, error) {
	return s.GetValue(ctx, KeyRefRegA, s.defaults.RefRegA)
}

// RefDepA депозитная ссылка когорты A.
func (s *Service) RefDepA(ctx context.Context) (string, error) {
	return s.GetValue(ctx, KeyRefDepA, s.defaults.RefDepA)
}

// ChannelID числовой id канала подписки, 0 если не задан.
func (s *Service) ChannelID(ctx context.Context) (int64, error) {
	v, err := s.GetValue(ctx, KeyChannelID, "")
	if err != nil {
		return 0, err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return s.defaults.ChannelID, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return s.defaults.ChannelID, nil
	}
	return id, nil
}

// ChannelURL публичная ссылка канала подписки.
func (s *Service) ChannelURL(ctx context.Context) (string, error) {
	return s.GetValue(ctx, KeyChannelURL, s.defaults.Telegram.ChannelURL)
}

// SupportURL ссылка поддержки.
func (s *Service) SupportURL(ctx context.Context) (string, error) {
	return s.GetValue(ctx, KeySupportURL, s.defaults.Telegram.SupportURL)
}

// PlatinumThreshold порог Platinum по накопленной сумме депозитов.
func (s *Service) PlatinumThreshold(ctx context.Context) (float64, error) {
	return s.GetFloat(ctx, KeyPlatinumThreshold, s.defaults.Funnel.PlatinumThreshold)
}

// FirstDepositMin минимальный суммарный депозит для прохода ворот.
func (s *Service) FirstDepositMin(ctx context.Context) (float64, error) {
	return s.GetFloat(ctx, KeyFirstDepositMin, s.defaults.Funnel.FirstDepositMin)
}

// CheckSubscriptionEnabled включены ли ворота подписки.
func (s *Service) CheckSubscriptionEnabled(ctx context.Context) (bool, error) {
	return s.GetBool(ctx, KeyCheckSubscription, true)
}

// CheckRegistrationEnabled включены ли ворота регистрации.
// Админка не даёт их выключить; перепроверка контракта здесь не делается.
func (s *Service) CheckRegistrationEnabled(ctx context.Context) (bool, error) {
	return s.GetBool(ctx, KeyCheckRegistration, true)
}

// CheckDepositEnabled включены ли ворота депозита.
func (s *Service) CheckDepositEnabled(ctx context.Context) (bool, error) {
	return s.GetBool(ctx, KeyCheckDeposit, true)
}

// BroadcastText сохранённый текст рассылки.
func (s *Service) BroadcastText(ctx context.Context) (string, error) {
	return s.GetValue(ctx, KeyBcastText, "")
}

// BroadcastPhoto сохранённый file_id фото рассылки.
func (s *Service) BroadcastPhoto(ctx context.Context) (string, error) {
	return s.GetValue(ctx, KeyBcastPhoto, "")
}

// SetBroadcastText сохраняет текст рассылки.
func (s *Service) SetBroadcastText(ctx context.Context, v string) error {
	return s.SetValue(ctx, KeyBcastText, v)
}

// SetBroadcastPhoto сохраняет file_id фото рассылки.
func (s *Service) SetBroadcastPhoto(ctx context.Context, v string) error {
	return s.SetValue(ctx, KeyBcastPhoto, v)
}

func btnCacheKey(lang, key string) string {
	return fmt.Sprintf("btn:%s:%s", lang, key)
}

// ButtonText возвращает подпись кнопки: кэш, затем БД, иначе default.
// Кэш пуст до первого обращения; набивается по мере чтений.
func (s *Service) ButtonText(ctx context.Context, lang, key, def string) string {
	ck := btnCacheKey(lang, key)
	var cached string
	if found, err := s.cache.Get(ck, &cached); err != nil {
		s.log.Warn("button cache read failed", slog.String("key", ck), sl.Err(err))
	} else if found {
		if cached == "" {
			return def
		}
		return cached
	}

	overrides, err := s.repo.ListButtonOverrides(ctx)
	if err != nil {
		s.log.Warn("button overrides load failed", sl.Err(err))
		return def
	}
	text := ""
	for _, ov := range overrides {
		if err := s.cache.Set(btnCacheKey(ov.Lang, ov.Key), ov.Text, cacheTTL); err != nil {
			s.log.Warn("button cache write failed", sl.Err(err))
		}
		if ov.Lang == lang && ov.Key == key {
			text = ov.Text
		}
	}
	// отрицательный результат тоже кэшируем, пустая строка означает "дефолт"
	if text == "" {
		if err := s.cache.Set(ck, "", cacheTTL); err != nil {
			s.log.Warn("button cache write failed", sl.Err(err))
		}
		return def
	}
	return text
}

// SetButtonText сохраняет подпись кнопки и обновляет кэш.
func (s *Service) SetButtonText(ctx context.Context, lang, key, text string) error {
	if err := s.repo.UpsertButtonText(ctx, lang, key, text); err != nil {
		return err
	}
	if err := s.cache.Set(btnCacheKey(lang, key), text, cacheTTL); err != nil {
		s.log.Warn("button cache write failed", sl.Err(err))
	}
	return nil
}

// DeleteButtonText удаляет оверрайд подписи и инвалидирует кэш.
func (s *Service) DeleteButtonText(ctx context.Context, lang, key string) error {
	if err := s.repo.DeleteButtonText(ctx, lang, key); err != nil {
		return err
	}
	if err := s.cache.Invalidate(btnCacheKey(lang, key)); err != nil {
		s.log.Warn("button cache invalidate failed", sl.Err(err))
	}
	return nil
}
