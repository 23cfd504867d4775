package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"prenota/internal/config"
	"prenota/internal/events"
	"prenota/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetSettings(ctx context.Context, defaults *model.Settings) (*model.Settings, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settings), args.Error(1)
}

func (m *mockRepo) SaveSettings(ctx context.Context, s *model.Settings) error {
	return m.Called(ctx, s).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p any) error { return m.Called(et, p).Error(0) }

func TestStore_CachesUntilTTL(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	stored := config.DefaultSettings()
	repo.On("GetSettings", ctx, mock.Anything).Return(stored, nil).Twice()

	store := NewStore(repo, nil, nil, time.Minute, nil)
	clock := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		s, err := store.Settings(ctx)
		require.NoError(t, err)
		assert.Same(t, stored, s)
	}
	repo.AssertNumberOfCalls(t, "GetSettings", 1)

	clock = clock.Add(2 * time.Minute)
	_, err := store.Settings(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetSettings", 2)
}

func TestStore_ServesStaleOnRefreshError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	stored := config.DefaultSettings()
	repo.On("GetSettings", ctx, mock.Anything).Return(stored, nil).Once()
	repo.On("GetSettings", ctx, mock.Anything).Return(nil, errors.New("disk gone"))

	store := NewStore(repo, nil, nil, time.Second, nil)
	clock := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	_, err := store.Settings(ctx)
	require.NoError(t, err)

	s, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Same(t, stored, s)

	empty := NewStore(repo, nil, nil, 0, nil)
	_, err = empty.Settings(ctx)
	assert.Error(t, err)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	bus := new(mockEventBus)
	store := NewStore(repo, nil, bus, 0, nil)

	next := config.DefaultSettings()
	next.Mode = model.ModeSimple
	repo.On("SaveSettings", ctx, next).Return(nil)
	bus.On("PublishJSON", events.SettingsUpdated, next).Return(nil)

	require.NoError(t, store.Update(ctx, next))
	s, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Same(t, next, s)
	repo.AssertNotCalled(t, "GetSettings", mock.Anything, mock.Anything)
	bus.AssertExpectations(t)

	bad := config.DefaultSettings()
	bad.DurationRules[0].MaxGuests = -1
	err = store.Update(ctx, bad)
	assert.ErrorIs(t, err, config.ErrInvalidSettings)
	s, _ = store.Settings(ctx)
	assert.Same(t, next, s)
}

func TestStore_Apply(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	store := NewStore(repo, nil, nil, 0, nil)

	next := config.DefaultSettings()
	repo.On("SaveSettings", ctx, next).Return(nil)

	store.Apply(ctx)(next)
	s, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Same(t, next, s)
}
