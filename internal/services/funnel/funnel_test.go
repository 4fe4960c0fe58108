package funnel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/sig"
	"github.com/magabrotheeeer/funnel-bot/internal/models"
)

type MockRegistry struct{ mock.Mock }

func (m *MockRegistry) SetSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	args := m.Called(ctx, userID, subscribed)
	return args.Error(0)
}

func (m *MockRegistry) EnsureClickID(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockRegistry) SetPlatinumIfEligible(ctx context.Context, userID int64, threshold float64) (bool, error) {
	args := m.Called(ctx, userID, threshold)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistry) MarkAccessNotified(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockSettings struct{ mock.Mock }

func (m *MockSettings) PbSecret(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettings) ChannelURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettings) PlatinumThreshold(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSettings) FirstDepositMin(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSettings) CheckSubscriptionEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettings) CheckRegistrationEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettings) CheckDepositEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type MockMembership struct{ mock.Mock }

func (m *MockMembership) IsMember(ctx context.Context, tgID int64) (bool, error) {
	args := m.Called(ctx, tgID)
	return args.Bool(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Evaluate_GateOrder(t *testing.T) {
	tests := []struct {
		name       string
		user       models.User
		wantScreen Screen
	}{
		{
			name:       "unsubscribed user gets subscribe screen",
			user:       models.User{ID: 1, TelegramID: 100},
			wantScreen: ScreenSubscribe,
		},
		{
			name:       "subscribed but unregistered user gets register screen",
			user:       models.User{ID: 1, TelegramID: 100, IsSubscribed: true},
			wantScreen: ScreenRegister,
		},
		{
			name:       "registered without deposit gets deposit screen",
			user:       models.User{ID: 1, TelegramID: 100, IsSubscribed: true, IsRegistered: true},
			wantScreen: ScreenDeposit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRegistry)
			settings := new(MockSettings)
			membership := new(MockMembership)

			membership.On("IsMember", mock.Anything, int64(100)).Return(tt.user.IsSubscribed, nil)
			settings.On("CheckSubscriptionEnabled", mock.Anything).Return(true, nil)
			settings.On("CheckRegistrationEnabled", mock.Anything).Return(true, nil).Maybe()
			settings.On("CheckDepositEnabled", mock.Anything).Return(true, nil).Maybe()
			settings.On("ChannelURL", mock.Anything).Return("https://t.me/channel", nil).Maybe()
			settings.On("PbSecret", mock.Anything).Return("secret", nil).Maybe()
			settings.On("FirstDepositMin", mock.Anything).Return(10.0, nil).Maybe()
			repo.On("EnsureClickID", mock.Anything, int64(1)).Return("click-1", nil).Maybe()

			svc := New(repo, settings, membership, "https://funnel.example", testLogger())
			user := tt.user
			action, err := svc.Evaluate(context.Background(), &user)

			require.NoError(t, err)
			assert.Equal(t, tt.wantScreen, action.Screen)
		})
	}
}

func TestService_Evaluate_DisabledGatesAreSkipped(t *testing.T) {
	repo := new(MockRegistry)
	settings := new(MockSettings)
	membership := new(MockMembership)

	// все ворота выключены: любой пользователь проходит к доступу
	membership.On("IsMember", mock.Anything, int64(100)).Return(false, nil)
	settings.On("CheckSubscriptionEnabled", mock.Anything).Return(false, nil)
	settings.On("CheckRegistrationEnabled", mock.Anything).Return(false, nil)
	settings.On("CheckDepositEnabled", mock.Anything).Return(false, nil)
	settings.On("PlatinumThreshold", mock.Anything).Return(100.0, nil)
	repo.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(false, nil)
	repo.On("MarkAccessNotified", mock.Anything, int64(1)).Return(true, nil)

	svc := New(repo, settings, membership, "https://funnel.example", testLogger())
	user := models.User{ID: 1, TelegramID: 100}
	action, err := svc.Evaluate(context.Background(), &user)

	require.NoError(t, err)
	assert.Equal(t, ScreenAccess, action.Screen)
	assert.False(t, action.VIP)
}

func TestService_Evaluate_AccessShownOnce(t *testing.T) {
	repo := new(MockRegistry)
	settings := new(MockSettings)
	membership := new(MockMembership)

	membership.On("IsMember", mock.Anything, int64(100)).Return(true, nil)
	settings.On("CheckSubscriptionEnabled", mock.Anything).Return(true, nil)
	settings.On("CheckRegistrationEnabled", mock.Anything).Return(true, nil)
	settings.On("CheckDepositEnabled", mock.Anything).Return(true, nil)
	settings.On("PlatinumThreshold", mock.Anything).Return(100.0, nil)
	repo.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(false, nil)
	// проигрыш гонки за уведомление: экран уже был показан
	repo.On("MarkAccessNotified", mock.Anything, int64(1)).Return(false, nil)

	svc := New(repo, settings, membership, "https://funnel.example", testLogger())
	user := models.User{ID: 1, TelegramID: 100, IsSubscribed: true, IsRegistered: true, HasDeposit: true}
	action, err := svc.Evaluate(context.Background(), &user)

	require.NoError(t, err)
	assert.Equal(t, ScreenNone, action.Screen)
}

func TestService_Evaluate_PlatinumPromotion(t *testing.T) {
	repo := new(MockRegistry)
	settings := new(MockSettings)
	membership := new(MockMembership)

	membership.On("IsMember", mock.Anything, int64(100)).Return(true, nil)
	settings.On("CheckSubscriptionEnabled", mock.Anything).Return(true, nil)
	settings.On("CheckRegistrationEnabled", mock.Anything).Return(true, nil)
	settings.On("CheckDepositEnabled", mock.Anything).Return(true, nil)
	settings.On("PlatinumThreshold", mock.Anything).Return(100.0, nil)
	repo.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(true, nil)
	repo.On("MarkAccessNotified", mock.Anything, int64(1)).Return(true, nil)

	svc := New(repo, settings, membership, "https://funnel.example", testLogger())
	user := models.User{ID: 1, TelegramID: 100, IsSubscribed: true, IsRegistered: true,
		HasDeposit: true, TotalDeposits: 150}
	action, err := svc.Evaluate(context.Background(), &user)

	require.NoError(t, err)
	assert.Equal(t, ScreenAccess, action.Screen)
	assert.True(t, action.VIP)
	assert.True(t, user.IsPlatinum)
}

func TestService_Evaluate_LiveMembershipRefresh(t *testing.T) {
	repo := new(MockRegistry)
	settings := new(MockSettings)
	membership := new(MockMembership)

	// флаг в базе отстал: живая проверка говорит "подписан"
	membership.On("IsMember", mock.Anything, int64(100)).Return(true, nil)
	repo.On("SetSubscribed", mock.Anything, int64(1), true).Return(nil)
	settings.On("CheckSubscriptionEnabled", mock.Anything).Return(true, nil)
	settings.On("CheckRegistrationEnabled", mock.Anything).Return(true, nil)
	settings.On("PbSecret", mock.Anything).Return("secret", nil)
	repo.On("EnsureClickID", mock.Anything, int64(1)).Return("click-1", nil)

	svc := New(repo, settings, membership, "https://funnel.example", testLogger())
	user := models.User{ID: 1, TelegramID: 100}
	action, err := svc.Evaluate(context.Background(), &user)

	require.NoError(t, err)
	assert.Equal(t, ScreenRegister, action.Screen)
	assert.True(t, user.IsSubscribed)
	repo.AssertCalled(t, "SetSubscribed", mock.Anything, int64(1), true)
}

func TestService_Evaluate_MembershipErrorTreatedAsNotSubscribed(t *testing.T) {
	repo := new(MockRegistry)
	settings := new(MockSettings)
	membership := new(MockMembership)

	membership.On("IsMember", mock.Anything, int64(100)).Return(false, errors.New("telegram is down"))
	settings.On("CheckSubscriptionEnabled", mock.Anything).Return(true, nil)
	settings.On("ChannelURL", mock.Anything).Return("https://t.me/channel", nil)

	svc := New(repo, settings, membership, "https://funnel.example", testLogger())
	user := models.User{ID: 1, TelegramID: 100}
	action, err := svc.Evaluate(context.Background(), &user)

	require.NoError(t, err)
	assert.Equal(t, ScreenSubscribe, action.Screen)
}

func TestService_SignedLink(t *testing.T) {
	repo := new(MockRegistry)
	settings := new(MockSettings)
	membership := new(MockMembership)
	settings.On("PbSecret", mock.Anything).Return("secret", nil)

	svc := New(repo, settings, membership, "https://funnel.example", testLogger())

	regURL, err := svc.SignedLink(context.Background(), sig.KindRegistration, "click-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(regURL, "https://funnel.example/r/click-1/"))

	depURL, err := svc.SignedLink(context.Background(), sig.KindDeposit, "click-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(depURL, "https://funnel.example/d/click-1/"))

	// подпись из ссылки должна проходить проверку
	parts := strings.Split(regURL, "/")
	assert.True(t, sig.Verify("secret", sig.KindRegistration, "click-1", parts[len(parts)-1]))
}

func TestService_HasAccessNow(t *testing.T) {
	tests := []struct {
		name   string
		user   models.User
		subOn  bool
		regOn  bool
		depOn  bool
		expect bool
	}{
		{
			name:   "all gates passed",
			user:   models.User{IsSubscribed: true, IsRegistered: true, HasDeposit: true},
			subOn:  true, regOn: true, depOn: true,
			expect: true,
		},
		{
			name:   "deposit missing",
			user:   models.User{IsSubscribed: true, IsRegistered: true},
			subOn:  true, regOn: true, depOn: true,
			expect: false,
		},
		{
			name:   "deposit gate disabled",
			user:   models.User{IsSubscribed: true, IsRegistered: true},
			subOn:  true, regOn: true, depOn: false,
			expect: true,
		},
		{
			name:   "everything disabled",
			user:   models.User{},
			expect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := new(MockSettings)
			settings.On("CheckSubscriptionEnabled", mock.Anything).Return(tt.subOn, nil)
			settings.On("CheckRegistrationEnabled", mock.Anything).Return(tt.regOn, nil)
			settings.On("CheckDepositEnabled", mock.Anything).Return(tt.depOn, nil)

			svc := New(new(MockRegistry), settings, new(MockMembership), "https://funnel.example", testLogger())
			user := tt.user
			got, err := svc.HasAccessNow(context.Background(), &user)

			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}
