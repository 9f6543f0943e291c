package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/cache"
	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/repo"
)

// ListCache - кэш списков владельца (*cache.Cache)
type ListCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	DeletePattern(ctx context.Context, pattern string) error
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) (int64, error)
}

// Service enforces owner scoping and validation in front of a repository.
// The cache is optional; cache failures are logged and never fail a request.
type Service[T model.Entity[T], P model.Patch[T, P]] struct {
	name   string
	order  model.Order
	repo   repo.Repository[T, P]
	cache  ListCache
	logger *zap.Logger
	now    func() time.Time
}

type TaskService = Service[model.Task, model.TaskPatch]

type NoteService = Service[model.Note, model.NotePatch]

func NewTaskService(r repo.TaskRepository, c ListCache, logger *zap.Logger) *TaskService {
	return newService("tasks", model.TaskOrder, r, c, logger)
}

func NewNoteService(r repo.NoteRepository, c ListCache, logger *zap.Logger) *NoteService {
	return newService("notes", model.NoteOrder, r, c, logger)
}

func newService[T model.Entity[T], P model.Patch[T, P]](name string, order model.Order, r repo.Repository[T, P], c ListCache, logger *zap.Logger) *Service[T, P] {
	return &Service[T, P]{
		name:   name,
		order:  order,
		repo:   r,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service[T, P]) Name() string { return s.name }

func (s *Service[T, P]) DefaultOrder() model.Order { return s.order }

// Create stores e for ownerID. The id is chosen by the caller; a missing
// creation time is filled in with the current time.
func (s *Service[T, P]) Create(ctx context.Context, ownerID string, e T) (T, error) {
	var zero T
	if err := e.Validate(); err != nil {
		return zero, err
	}
	if e.EntityID() == "" {
		return zero, fmt.Errorf("%w: id is required", model.ErrValidation)
	}
	if e.Owner() != "" && e.Owner() != ownerID {
		return zero, model.ErrForbidden
	}

	at := e.Created()
	if at.IsZero() {
		at = s.now()
	}
	e = e.Stamp(e.EntityID(), ownerID, at)

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return zero, err
	}
	s.invalidate(ctx, ownerID)
	return created, nil
}

func (s *Service[T, P]) Get(ctx context.Context, ownerID, id string) (T, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns the owner's collection, served from the cache when possible.
func (s *Service[T, P]) List(ctx context.Context, ownerID string, order model.Order) ([]T, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("%w: unknown order field %q", model.ErrValidation, order.Field)
	}

	var key string
	if s.cache != nil {
		gen, err := s.cache.Generation(ctx, cache.GenerationKey(s.name, ownerID))
		if err != nil {
			s.logger.Warn("cache generation read failed", zap.String("owner_id", ownerID), zap.Error(err))
		} else {
			key = cache.ListKey(s.name, ownerID, gen, order)
			var cached []T
			hit, err := s.cache.Get(ctx, key, &cached)
			if err != nil {
				s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
			} else if hit {
				return cached, nil
			}
		}
	}

	items, err := s.repo.List(ctx, ownerID, order)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, items); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

// Update applies patch. A patch without a modification time is stamped now.
func (s *Service[T, P]) Update(ctx context.Context, ownerID, id string, patch P) (T, error) {
	var zero T
	if err := patch.Validate(); err != nil {
		return zero, err
	}
	if patch.ModifiedAt().IsZero() {
		patch = patch.At(s.now())
	}

	updated, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return zero, err
	}
	s.invalidate(ctx, ownerID)
	return updated, nil
}

func (s *Service[T, P]) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *Service[T, P]) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	// fills that read the store before this write land under the old generation
	if _, err := s.cache.Bump(ctx, cache.GenerationKey(s.name, ownerID)); err != nil {
		s.logger.Warn("cache generation bump failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
	pattern := cache.OwnerPattern(s.name, ownerID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
