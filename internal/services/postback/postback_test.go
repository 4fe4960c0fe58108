package postback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/magabrotheeeer/funnel-bot/internal/models"
	"github.com/magabrotheeeer/funnel-bot/internal/services/funnel"
	"github.com/magabrotheeeer/funnel-bot/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) GetUserByClickID(ctx context.Context, clickID string) (*models.User, error) {
	args := m.Called(ctx, clickID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRegistry) SetTraderIDIfEmpty(ctx context.Context, userID int64, traderID string) (bool, error) {
	args := m.Called(ctx, userID, traderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistry) MarkRegistered(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistry) AddDeposit(ctx context.Context, userID int64, amount float64) (float64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRegistry) MarkHasDeposit(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistry) SetSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	args := m.Called(ctx, userID, subscribed)
	return args.Error(0)
}

func (m *MockRegistry) SetPlatinumIfEligible(ctx context.Context, userID int64, threshold float64) (bool, error) {
	args := m.Called(ctx, userID, threshold)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistry) MarkPlatinumNotified(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) PbSecret(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettings) FirstDepositMin(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSettings) PlatinumThreshold(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, user *models.User) (*funnel.NextAction, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funnel.NextAction), args.Error(1)
}

func (m *MockEvaluator) DepositAction(ctx context.Context, user *models.User) (*funnel.NextAction, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*funnel.NextAction), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, user *models.User, action *funnel.NextAction) error {
	args := m.Called(ctx, user, action)
	return args.Error(0)
}

func (m *MockDispatcher) SendPlatinum(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockMembership struct {
	mock.Mock
}

func (m *MockMembership) IsMember(ctx context.Context, tgID int64) (bool, error) {
	args := m.Called(ctx, tgID)
	return args.Bool(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testUser() *models.User {
	return &models.User{
		ID:         1,
		TelegramID: 100500,
		ClickID:    "abc123",
		Group:      models.GroupA,
	}
}

func newService(r *MockRegistry, s *MockSettings, e *MockEvaluator, d *MockDispatcher, mc *MockMembership) *Service {
	return New(r, s, e, d, mc, newNoopLogger())
}

func TestService_Process_Auth(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		clickID     string
		setupMocks  func(r *MockRegistry, s *MockSettings)
		expectedErr error
	}{
		{
			name:    "wrong token - unauthorized",
			token:   "wrong",
			clickID: "abc123",
			setupMocks: func(r *MockRegistry, s *MockSettings) {
				s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:    "empty token - unauthorized",
			token:   "",
			clickID: "abc123",
			setupMocks: func(r *MockRegistry, s *MockSettings) {
				s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:    "missing click_id - bad request",
			token:   "secret",
			clickID: "",
			setupMocks: func(r *MockRegistry, s *MockSettings) {
				s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
			},
			expectedErr: ErrBadRequest,
		},
		{
			name:    "unknown click_id - not found",
			token:   "secret",
			clickID: "missing",
			setupMocks: func(r *MockRegistry, s *MockSettings) {
				s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
				r.On("GetUserByClickID", mock.Anything, "missing").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockRegistry)
			s := new(MockSettings)
			tt.setupMocks(r, s)
			svc := newService(r, s, new(MockEvaluator), new(MockDispatcher), new(MockMembership))

			status, err := svc.Process(context.Background(), Event{
				Kind:    KindRegistration,
				Token:   tt.token,
				ClickID: tt.clickID,
			})

			assert.Nil(t, status)
			assert.ErrorIs(t, err, tt.expectedErr)
			r.AssertExpectations(t)
			s.AssertExpectations(t)
		})
	}
}

func TestService_Process_Registration(t *testing.T) {
	r := new(MockRegistry)
	s := new(MockSettings)
	mc := new(MockMembership)
	user := testUser()

	s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
	s.On("PlatinumThreshold", mock.Anything).Return(100.0, nil).Once()
	r.On("GetUserByClickID", mock.Anything, "abc123").Return(user, nil).Once()
	r.On("SetTraderIDIfEmpty", mock.Anything, int64(1), "tr-7").Return(true, nil).Once()
	r.On("MarkRegistered", mock.Anything, int64(1)).Return(true, nil).Once()
	r.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(false, nil).Once()
	mc.On("IsMember", mock.Anything, int64(100500)).Return(false, nil).Once()

	svc := newService(r, s, new(MockEvaluator), new(MockDispatcher), mc)
	status, err := svc.Process(context.Background(), Event{
		Kind:     KindRegistration,
		RawEvent: "reg",
		Token:    "secret",
		ClickID:  "abc123",
		TraderID: "tr-7",
	})

	require.NoError(t, err)
	assert.True(t, status.OK)
	assert.Equal(t, "reg", status.Event)
	assert.True(t, status.IsRegistered)
	assert.False(t, status.HasDeposit)
	r.AssertExpectations(t)
}

func TestService_Process_RegistrationIdempotent(t *testing.T) {
	// повторная доставка того же события меняет ничего и остаётся 200
	r := new(MockRegistry)
	s := new(MockSettings)
	mc := new(MockMembership)
	user := testUser()
	user.IsRegistered = true
	user.TraderID = "tr-7"

	s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
	s.On("PlatinumThreshold", mock.Anything).Return(100.0, nil).Once()
	r.On("GetUserByClickID", mock.Anything, "abc123").Return(user, nil).Once()
	r.On("MarkRegistered", mock.Anything, int64(1)).Return(false, nil).Once()
	r.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(false, nil).Once()
	mc.On("IsMember", mock.Anything, int64(100500)).Return(true, nil).Once()
	r.On("SetSubscribed", mock.Anything, int64(1), true).Return(nil).Once()

	svc := newService(r, s, new(MockEvaluator), new(MockDispatcher), mc)
	status, err := svc.Process(context.Background(), Event{
		Kind:     KindRegistration,
		RawEvent: "reg",
		Token:    "secret",
		ClickID:  "abc123",
		TraderID: "tr-7",
	})

	require.NoError(t, err)
	assert.True(t, status.OK)
	// trader id уже записан, повторная попытка записи не делается
	r.AssertNotCalled(t, "SetTraderIDIfEmpty", mock.Anything, mock.Anything, mock.Anything)
	r.AssertExpectations(t)
}

func TestService_Process_DepositBelowThreshold(t *testing.T) {
	r := new(MockRegistry)
	s := new(MockSettings)
	e := new(MockEvaluator)
	d := new(MockDispatcher)
	mc := new(MockMembership)
	user := testUser()
	user.IsRegistered = true

	action := &funnel.NextAction{Screen: funnel.ScreenDeposit}

	s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
	s.On("FirstDepositMin", mock.Anything).Return(10.0, nil).Once()
	s.On("PlatinumThreshold", mock.Anything).Return(100.0, nil).Once()
	r.On("GetUserByClickID", mock.Anything, "abc123").Return(user, nil).Once()
	r.On("AddDeposit", mock.Anything, int64(1), 4.0).Return(4.0, nil).Once()
	e.On("DepositAction", mock.Anything, user).Return(action, nil).Once()
	d.On("Dispatch", mock.Anything, user, action).Return(nil).Once()
	r.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(false, nil).Once()
	mc.On("IsMember", mock.Anything, int64(100500)).Return(false, nil).Once()

	svc := newService(r, s, e, d, mc)
	status, err := svc.Process(context.Background(), Event{
		Kind:     KindDepositFirst,
		RawEvent: "dep_first",
		Token:    "secret",
		ClickID:  "abc123",
		Amount:   4.0,
	})

	require.NoError(t, err)
	assert.False(t, status.HasDeposit)
	assert.Equal(t, 4.0, status.TotalDeposits)
	r.AssertNotCalled(t, "MarkHasDeposit", mock.Anything, mock.Anything)
	r.AssertExpectations(t)
	e.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestService_Process_DepositReachesThreshold(t *testing.T) {
	r := new(MockRegistry)
	s := new(MockSettings)
	e := new(MockEvaluator)
	d := new(MockDispatcher)
	mc := new(MockMembership)
	user := testUser()
	user.IsRegistered = true
	user.IsSubscribed = true
	user.TotalDeposits = 7.0

	action := &funnel.NextAction{Screen: funnel.ScreenAccess}

	s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
	s.On("FirstDepositMin", mock.Anything).Return(10.0, nil).Once()
	s.On("PlatinumThreshold", mock.Anything).Return(100.0, nil).Once()
	r.On("GetUserByClickID", mock.Anything, "abc123").Return(user, nil).Once()
	r.On("AddDeposit", mock.Anything, int64(1), 5.0).Return(12.0, nil).Once()
	r.On("MarkHasDeposit", mock.Anything, int64(1)).Return(true, nil).Once()
	e.On("Evaluate", mock.Anything, user).Return(action, nil).Once()
	d.On("Dispatch", mock.Anything, user, action).Return(nil).Once()
	r.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(false, nil).Once()
	mc.On("IsMember", mock.Anything, int64(100500)).Return(true, nil).Once()

	svc := newService(r, s, e, d, mc)
	status, err := svc.Process(context.Background(), Event{
		Kind:     KindDeposit,
		RawEvent: "dep",
		Token:    "secret",
		ClickID:  "abc123",
		Amount:   5.0,
	})

	require.NoError(t, err)
	assert.True(t, status.HasDeposit)
	assert.Equal(t, 12.0, status.TotalDeposits)
	r.AssertExpectations(t)
	e.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestService_Process_DepositWriteFails(t *testing.T) {
	// сбой записи суммы не маскируется успешным ответом
	r := new(MockRegistry)
	s := new(MockSettings)
	user := testUser()

	s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
	r.On("GetUserByClickID", mock.Anything, "abc123").Return(user, nil).Once()
	r.On("AddDeposit", mock.Anything, int64(1), 5.0).
		Return(0.0, errors.New("db down")).Once()

	svc := newService(r, s, new(MockEvaluator), new(MockDispatcher), new(MockMembership))
	status, err := svc.Process(context.Background(), Event{
		Kind:    KindDeposit,
		Token:   "secret",
		ClickID: "abc123",
		Amount:  5.0,
	})

	assert.Nil(t, status)
	assert.Error(t, err)
	r.AssertExpectations(t)
}

func TestService_Process_DispatchFailureStillOK(t *testing.T) {
	// упавший пуш не влияет на ответ партнёрской сети
	r := new(MockRegistry)
	s := new(MockSettings)
	e := new(MockEvaluator)
	d := new(MockDispatcher)
	mc := new(MockMembership)
	user := testUser()
	user.IsRegistered = true
	user.IsSubscribed = true

	action := &funnel.NextAction{Screen: funnel.ScreenAccess}

	s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
	s.On("FirstDepositMin", mock.Anything).Return(10.0, nil).Once()
	s.On("PlatinumThreshold", mock.Anything).Return(100.0, nil).Once()
	r.On("GetUserByClickID", mock.Anything, "abc123").Return(user, nil).Once()
	r.On("AddDeposit", mock.Anything, int64(1), 50.0).Return(50.0, nil).Once()
	r.On("MarkHasDeposit", mock.Anything, int64(1)).Return(true, nil).Once()
	e.On("Evaluate", mock.Anything, user).Return(action, nil).Once()
	d.On("Dispatch", mock.Anything, user, action).Return(errors.New("blocked by user")).Once()
	r.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(false, nil).Once()
	mc.On("IsMember", mock.Anything, int64(100500)).Return(true, nil).Once()

	svc := newService(r, s, e, d, mc)
	status, err := svc.Process(context.Background(), Event{
		Kind:    KindDeposit,
		Token:   "secret",
		ClickID: "abc123",
		Amount:  50.0,
	})

	require.NoError(t, err)
	assert.True(t, status.OK)
	d.AssertExpectations(t)
}

func TestService_Process_PlatinumNotifiedOnce(t *testing.T) {
	tests := []struct {
		name       string
		wonGuard   bool
		expectPush bool
	}{
		{name: "guard won - platinum pushed", wonGuard: true, expectPush: true},
		{name: "guard lost - no push", wonGuard: false, expectPush: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockRegistry)
			s := new(MockSettings)
			e := new(MockEvaluator)
			d := new(MockDispatcher)
			mc := new(MockMembership)
			user := testUser()
			user.IsRegistered = true
			user.HasDeposit = true
			user.IsSubscribed = true
			user.TotalDeposits = 80.0

			s.On("PbSecret", mock.Anything).Return("secret", nil).Once()
			s.On("FirstDepositMin", mock.Anything).Return(10.0, nil).Once()
			s.On("PlatinumThreshold", mock.Anything).Return(100.0, nil).Once()
			r.On("GetUserByClickID", mock.Anything, "abc123").Return(user, nil).Once()
			r.On("AddDeposit", mock.Anything, int64(1), 30.0).Return(110.0, nil).Once()
			r.On("MarkHasDeposit", mock.Anything, int64(1)).Return(false, nil).Once()
			e.On("Evaluate", mock.Anything, user).
				Return(&funnel.NextAction{Screen: funnel.ScreenNone}, nil).Once()
			d.On("Dispatch", mock.Anything, user, mock.Anything).Return(nil).Once()
			r.On("SetPlatinumIfEligible", mock.Anything, int64(1), 100.0).Return(true, nil).Once()
			r.On("MarkPlatinumNotified", mock.Anything, int64(1)).Return(tt.wonGuard, nil).Once()
			if tt.expectPush {
				d.On("SendPlatinum", mock.Anything, user).Return(nil).Once()
			}
			mc.On("IsMember", mock.Anything, int64(100500)).Return(true, nil).Once()

			svc := newService(r, s, e, d, mc)
			status, err := svc.Process(context.Background(), Event{
				Kind:    KindDepositRepeat,
				Token:   "secret",
				ClickID: "abc123",
				Amount:  30.0,
			})

			require.NoError(t, err)
			assert.True(t, status.IsPlatinum)
			if !tt.expectPush {
				d.AssertNotCalled(t, "SendPlatinum", mock.Anything, mock.Anything)
			}
			r.AssertExpectations(t)
			d.AssertExpectations(t)
		})
	}
}

func TestService_Process_ConcurrentSameUserSerialized(t *testing.T) {
	// параллельные постбэки одного click_id не теряют накопление
	r := new(MockRegistry)
	s := new(MockSettings)
	e := new(MockEvaluator)
	d := new(MockDispatcher)
	mc := new(MockMembership)

	var mu sync.Mutex
	total := 0.0

	s.On("PbSecret", mock.Anything).Return("secret", nil)
	s.On("FirstDepositMin", mock.Anything).Return(1000.0, nil)
	s.On("PlatinumThreshold", mock.Anything).Return(10000.0, nil)
	r.On("GetUserByClickID", mock.Anything, "abc123").
		Return(testUser(), nil)
	r.On("AddDeposit", mock.Anything, int64(1), 5.0).
		Run(func(args mock.Arguments) {
			mu.Lock()
			total += 5.0
			mu.Unlock()
		}).Return(5.0, nil)
	e.On("DepositAction", mock.Anything, mock.Anything).
		Return(&funnel.NextAction{Screen: funnel.ScreenDeposit}, nil)
	d.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	r.On("SetPlatinumIfEligible", mock.Anything, int64(1), 10000.0).Return(false, nil)
	mc.On("IsMember", mock.Anything, int64(100500)).Return(false, nil)

	svc := newService(r, s, e, d, mc)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Process(context.Background(), Event{
				Kind:    KindDeposit,
				Token:   "secret",
				ClickID: "abc123",
				Amount:  5.0,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(workers)*5.0, total)
}
