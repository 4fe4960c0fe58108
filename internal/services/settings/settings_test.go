package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/funnel-bot/internal/config"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) GetConfigValue(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockRepo) SetConfigValue(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockRepo) ListButtonOverrides(ctx context.Context) ([]models.ButtonOverride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ButtonOverride), args.Error(1)
}

func (m *MockRepo) UpsertButtonText(ctx context.Context, lang, key, text string) error {
	args := m.Called(ctx, lang, key, text)
	return args.Error(0)
}

func (m *MockRepo) DeleteButtonText(ctx context.Context, lang, key string) error {
	args := m.Called(ctx, lang, key)
	return args.Error(0)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	if args.Bool(0) {
		if s, ok := result.(*string); ok {
			*s = args.String(2)
		}
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaults() *config.Config {
	cfg := &config.Config{}
	cfg.PostbackSecret = "default-secret"
	cfg.FirstDepositMin = 10
	cfg.PlatinumThreshold = 100
	return cfg
}

func TestService_GetValue_CacheHitSkipsDatabase(t *testing.T) {
	repo := new(MockRepo)
	cache := new(MockCache)
	cache.On("Get", "settings:PB_SECRET", mock.Anything).Return(true, nil, "cached-secret")

	svc := New(repo, cache, defaults(), testLogger())
	got, err := svc.PbSecret(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "cached-secret", got)
	repo.AssertNotCalled(t, "GetConfigValue", mock.Anything, mock.Anything)
}

func TestService_GetValue_MissFallsBackToDatabase(t *testing.T) {
	repo := new(MockRepo)
	cache := new(MockCache)
	cache.On("Get", "settings:PB_SECRET", mock.Anything).Return(false, nil, "")
	repo.On("GetConfigValue", mock.Anything, "PB_SECRET").Return("db-secret", true, nil)
	cache.On("Set", "settings:PB_SECRET", "db-secret", cacheTTL).Return(nil)

	svc := New(repo, cache, defaults(), testLogger())
	got, err := svc.PbSecret(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "db-secret", got)
	cache.AssertCalled(t, "Set", "settings:PB_SECRET", "db-secret", cacheTTL)
}

func TestService_GetValue_MissingKeyReturnsDefault(t *testing.T) {
	repo := new(MockRepo)
	cache := new(MockCache)
	cache.On("Get", "settings:PB_SECRET", mock.Anything).Return(false, nil, "")
	repo.On("GetConfigValue", mock.Anything, "PB_SECRET").Return("", false, nil)

	svc := New(repo, cache, defaults(), testLogger())
	got, err := svc.PbSecret(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "default-secret", got)
}

func TestService_GetValue_CacheErrorIsNotFatal(t *testing.T) {
	repo := new(MockRepo)
	cache := new(MockCache)
	cache.On("Get", "settings:PB_SECRET", mock.Anything).Return(false, errors.New("redis is down"), "")
	repo.On("GetConfigValue", mock.Anything, "PB_SECRET").Return("db-secret", true, nil)
	cache.On("Set", "settings:PB_SECRET", "db-secret", cacheTTL).Return(errors.New("redis is down"))

	svc := New(repo, cache, defaults(), testLogger())
	got, err := svc.PbSecret(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "db-secret", got)
}

func TestService_SetValue_InvalidatesCache(t *testing.T) {
	repo := new(MockRepo)
	cache := new(MockCache)
	repo.On("SetConfigValue", mock.Anything, "REF_REG_A", "https://aff.example/reg").Return(nil)
	cache.On("Invalidate", "settings:REF_REG_A").Return(nil)

	svc := New(repo, cache, defaults(), testLogger())
	err := svc.SetValue(context.Background(), KeyRefRegA, "https://aff.example/reg")

	require.NoError(t, err)
	cache.AssertCalled(t, "Invalidate", "settings:REF_REG_A")
}

func TestService_GetBool_Parsing(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		expect bool
	}{
		{"one is true", "1", true},
		{"true is true", "true", true},
		{"yes is true", "yes", true},
		{"on with spaces is true", " ON ", true},
		{"zero is false", "0", false},
		{"garbage is false", "banana", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			cache := new(MockCache)
			cache.On("Get", mock.Anything, mock.Anything).Return(false, nil, "")
			cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			repo.On("GetConfigValue", mock.Anything, KeyCheckDeposit).Return(tt.stored, true, nil)

			svc := New(repo, cache, defaults(), testLogger())
			got, err := svc.CheckDepositEnabled(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestService_GetFloat_CommaDecimalAndFallback(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		found  bool
		expect float64
	}{
		{"plain number", "25.5", true, 25.5},
		{"comma decimal", "25,5", true, 25.5},
		{"missing key uses default", "", false, 10},
		{"garbage uses default", "abc", true, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			cache := new(MockCache)
			cache.On("Get", mock.Anything, mock.Anything).Return(false, nil, "")
			cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			repo.On("GetConfigValue", mock.Anything, KeyFirstDepositMin).Return(tt.stored, tt.found, nil)

			svc := New(repo, cache, defaults(), testLogger())
			got, err := svc.FirstDepositMin(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestService_ButtonText_OverrideAndDefault(t *testing.T) {
	repo := new(MockRepo)
	cache := new(MockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(false, nil, "")
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	repo.On("ListButtonOverrides", mock.Anything).Return([]models.ButtonOverride{
		{Lang: "ru", Key: "btn_register", Text: "Регистрация!"},
	}, nil)

	svc := New(repo, cache, defaults(), testLogger())

	assert.Equal(t, "Регистрация!", svc.ButtonText(context.Background(), "ru", "btn_register", "Регистрация"))
	assert.Equal(t, "Register", svc.ButtonText(context.Background(), "en", "btn_register", "Register"))
}

func TestService_ButtonText_RepoErrorReturnsDefault(t *testing.T) {
	repo := new(MockRepo)
	cache := new(MockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(false, nil, "")
	repo.On("ListButtonOverrides", mock.Anything).Return(nil, errors.New("db is down"))

	svc := New(repo, cache, defaults(), testLogger())

	assert.Equal(t, "Register", svc.ButtonText(context.Background(), "en", "btn_register", "Register"))
}
