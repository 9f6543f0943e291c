package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, ownerID, id string) (model.Task, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID string, order model.Order) ([]model.Task, error) {
	args := m.Called(ctx, ownerID, order)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, ownerID, id string, p model.TaskPatch) (model.Task, error) {
	args := m.Called(ctx, ownerID, id, p)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockCache - мок кэша
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockCache) Generation(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) Bump(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// memCache is a ListCache over maps, for interleaving tests.
type memCache struct {
	mu    sync.Mutex
	lists map[string][]byte
	gens  map[string]int64
}

func newMemCache() *memCache {
	return &memCache{lists: map[string][]byte{}, gens: map[string]int64{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.lists[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[key] = data
	return nil
}

func (c *memCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.lists {
		if strings.HasPrefix(k, prefix) {
			delete(c.lists, k)
		}
	}
	return nil
}

func (c *memCache) Generation(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key], nil
}

func (c *memCache) Bump(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	return c.gens[key], nil
}

var fixedNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func newTaskService(r *MockTaskRepository, c *MockCache) *TaskService {
	var s *TaskService
	if c == nil {
		s = NewTaskService(r, nil, zap.NewNop())
	} else {
		s = NewTaskService(r, c, zap.NewNop())
	}
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestTaskService_Create(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		owner     string
		task      model.Task
		setupMock func(*MockTaskRepository)
		wantErr   error
	}{
		{
			name:  "client supplied id and time",
			owner: "u1",
			task:  model.Task{ID: "t1", Title: "Buy milk", Status: model.StatusTodo, Priority: model.PriorityHigh, CreatedAt: created},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(t model.Task) bool {
					return t.ID == "t1" && t.OwnerID == "u1" && t.CreatedAt.Equal(created) && t.UpdatedAt.Equal(created)
				})).Return(model.Task{ID: "t1", OwnerID: "u1", Title: "Buy milk"}, nil)
			},
		},
		{
			name:  "missing time is stamped now",
			owner: "u1",
			task:  model.Task{ID: "t2", Title: "Walk dog", Status: model.StatusTodo, Priority: model.PriorityLow},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(t model.Task) bool {
					return t.CreatedAt.Equal(fixedNow)
				})).Return(model.Task{ID: "t2"}, nil)
			},
		},
		{
			name:      "validation error - empty title",
			owner:     "u1",
			task:      model.Task{ID: "t3", Title: " ", Status: model.StatusTodo, Priority: model.PriorityLow},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   model.ErrValidation,
		},
		{
			name:      "validation error - missing id",
			owner:     "u1",
			task:      model.NewTask("No id", ""),
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   model.ErrValidation,
		},
		{
			name:      "owner mismatch",
			owner:     "u1",
			task:      model.Task{ID: "t4", OwnerID: "u2", Title: "Sneaky", Status: model.StatusTodo, Priority: model.PriorityLow},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   model.ErrForbidden,
		},
		{
			name:  "duplicate id",
			owner: "u1",
			task:  model.Task{ID: "t1", Title: "Again", Status: model.StatusTodo, Priority: model.PriorityLow},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(model.Task{}, model.ErrConflict)
			},
			wantErr: model.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := newTaskService(mockRepo, nil)
			_, err := svc.Create(context.Background(), tt.owner, tt.task)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_UpdateStampsMissingTime(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	done := model.StatusDone
	mockRepo.On("Update", mock.Anything, "u1", "t1", mock.MatchedBy(func(p model.TaskPatch) bool {
		return p.UpdatedAt.Equal(fixedNow) && *p.Status == model.StatusDone
	})).Return(model.Task{ID: "t1", Status: model.StatusDone}, nil)

	svc := newTaskService(mockRepo, nil)
	got, err := svc.Update(context.Background(), "u1", "t1", model.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, got.Status)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_UpdateKeepsClientTime(t *testing.T) {
	clientAt := fixedNow.Add(-time.Hour)
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Update", mock.Anything, "u1", "t1", mock.MatchedBy(func(p model.TaskPatch) bool {
		return p.UpdatedAt.Equal(clientAt)
	})).Return(model.Task{ID: "t1"}, nil)

	svc := newTaskService(mockRepo, nil)
	title := "Renamed"
	_, err := svc.Update(context.Background(), "u1", "t1", model.TaskPatch{Title: &title, UpdatedAt: clientAt})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_UpdateValidation(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	svc := newTaskService(mockRepo, nil)

	bogus := model.Status("archived")
	_, err := svc.Update(context.Background(), "u1", "t1", model.TaskPatch{Status: &bogus})
	assert.ErrorIs(t, err, model.ErrValidation)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_ListCacheAside(t *testing.T) {
	tasks := []model.Task{{ID: "t1", OwnerID: "u1", Title: "Cached"}}

	t.Run("miss loads and fills", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockCache := new(MockCache)
		mockCache.On("Generation", mock.Anything, "gen:tasks:u1").Return(int64(2), nil)
		mockCache.On("Get", mock.Anything, "tasks:u1:g2:created_at:desc", mock.Anything).Return(false, nil)
		mockRepo.On("List", mock.Anything, "u1", model.TaskOrder).Return(tasks, nil).Once()
		mockCache.On("Set", mock.Anything, "tasks:u1:g2:created_at:desc", tasks).Return(nil)

		svc := newTaskService(mockRepo, mockCache)
		got, err := svc.List(context.Background(), "u1", model.TaskOrder)
		require.NoError(t, err)
		assert.Equal(t, tasks, got)
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("hit skips the repository", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockCache := new(MockCache)
		mockCache.On("Generation", mock.Anything, "gen:tasks:u1").Return(int64(0), nil)
		mockCache.On("Get", mock.Anything, "tasks:u1:g0:created_at:desc", mock.Anything).
			Run(func(args mock.Arguments) {
				*(args.Get(2).(*[]model.Task)) = tasks
			}).
			Return(true, nil)

		svc := newTaskService(mockRepo, mockCache)
		got, err := svc.List(context.Background(), "u1", model.TaskOrder)
		require.NoError(t, err)
		assert.Equal(t, tasks, got)
		mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache errors fall through", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockCache := new(MockCache)
		mockCache.On("Generation", mock.Anything, mock.Anything).Return(int64(0), nil)
		mockCache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
		mockRepo.On("List", mock.Anything, "u1", model.TaskOrder).Return(tasks, nil)
		mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		svc := newTaskService(mockRepo, mockCache)
		got, err := svc.List(context.Background(), "u1", model.TaskOrder)
		require.NoError(t, err)
		assert.Equal(t, tasks, got)
	})

	t.Run("unreadable generation bypasses the cache", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockCache := new(MockCache)
		mockCache.On("Generation", mock.Anything, "gen:tasks:u1").Return(int64(0), errors.New("redis down"))
		mockRepo.On("List", mock.Anything, "u1", model.TaskOrder).Return(tasks, nil)

		svc := newTaskService(mockRepo, mockCache)
		got, err := svc.List(context.Background(), "u1", model.TaskOrder)
		require.NoError(t, err)
		assert.Equal(t, tasks, got)
		mockCache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid order", func(t *testing.T) {
		svc := newTaskService(new(MockTaskRepository), nil)
		_, err := svc.List(context.Background(), "u1", model.Order{Field: "title"})
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestTaskService_WritesInvalidateOwnerLists(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockCache := new(MockCache)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(model.Task{ID: "t1"}, nil)
	mockRepo.On("Update", mock.Anything, "u1", "t1", mock.Anything).Return(model.Task{ID: "t1"}, nil)
	mockRepo.On("Delete", mock.Anything, "u1", "t1").Return(nil)
	mockRepo.On("Delete", mock.Anything, "u1", "gone").Return(model.ErrNotFound)
	mockCache.On("Bump", mock.Anything, "gen:tasks:u1").Return(int64(1), nil).Times(3)
	mockCache.On("DeletePattern", mock.Anything, "tasks:u1:*").Return(nil).Times(3)

	svc := newTaskService(mockRepo, mockCache)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", model.Task{ID: "t1", Title: "x", Status: model.StatusTodo, Priority: model.PriorityLow})
	require.NoError(t, err)
	title := "y"
	_, err = svc.Update(ctx, "u1", "t1", model.TaskPatch{Title: &title})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "u1", "t1"))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", "gone"), model.ErrNotFound)

	mockCache.AssertExpectations(t)
	mockCache.AssertNumberOfCalls(t, "DeletePattern", 3)
}

func TestTaskService_FillRacingWriteIsNotServed(t *testing.T) {
	before := []model.Task{{ID: "t1", OwnerID: "u1", Title: "Old"}}
	after := []model.Task{{ID: "t1", OwnerID: "u1", Title: "New"}}

	mockRepo := new(MockTaskRepository)
	svc := newTaskService(mockRepo, nil)
	svc.cache = newMemCache()

	title := "New"
	mockRepo.On("Update", mock.Anything, "u1", "t1", mock.Anything).Return(after[0], nil)
	// the write commits and invalidates while the first read is still in flight
	mockRepo.On("List", mock.Anything, "u1", model.TaskOrder).
		Run(func(mock.Arguments) {
			_, err := svc.Update(context.Background(), "u1", "t1", model.TaskPatch{Title: &title})
			require.NoError(t, err)
		}).
		Return(before, nil).Once()
	mockRepo.On("List", mock.Anything, "u1", model.TaskOrder).Return(after, nil).Once()

	ctx := context.Background()
	got, err := svc.List(ctx, "u1", model.TaskOrder)
	require.NoError(t, err)
	assert.Equal(t, before, got)

	got, err = svc.List(ctx, "u1", model.TaskOrder)
	require.NoError(t, err)
	assert.Equal(t, after, got)
	mockRepo.AssertExpectations(t)
}
