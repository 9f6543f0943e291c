package repo

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

var tracer = otel.Tracer("github.com/BuzzLyutic/taskpad/internal/repo")

// MemoryRepo keeps records in a map. It backs the server when no database is
// configured and stands in for Postgres in tests.
type MemoryRepo[T model.Entity[T], P model.Patch[T, P]] struct {
	name  string
	mu    sync.RWMutex
	items map[string]T
}

func NewMemoryRepo[T model.Entity[T], P model.Patch[T, P]](name string) *MemoryRepo[T, P] {
	return &MemoryRepo[T, P]{
		name:  name,
		items: make(map[string]T),
	}
}

func NewMemoryTaskRepo() *MemoryRepo[model.Task, model.TaskPatch] {
	return NewMemoryRepo[model.Task, model.TaskPatch]("tasks")
}

func NewMemoryNoteRepo() *MemoryRepo[model.Note, model.NotePatch] {
	return NewMemoryRepo[model.Note, model.NotePatch]("notes")
}

func (r *MemoryRepo[T, P]) Create(ctx context.Context, entity T) (T, error) {
	_, span := r.start(ctx, "Create", entity.Owner(), attribute.String("entity.id", entity.EntityID()))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	// ids are unique across owners, as with the Postgres primary key
	if _, ok := r.items[entity.EntityID()]; ok {
		var zero T
		return zero, model.ErrConflict
	}
	r.items[entity.EntityID()] = entity
	return entity, nil
}

func (r *MemoryRepo[T, P]) Get(ctx context.Context, ownerID, id string) (T, error) {
	_, span := r.start(ctx, "Get", ownerID, attribute.String("entity.id", id))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	span.SetAttributes(attribute.Bool("entity.found", ok && e.Owner() == ownerID))
	if !ok || e.Owner() != ownerID {
		var zero T
		return zero, model.ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo[T, P]) List(ctx context.Context, ownerID string, order model.Order) ([]T, error) {
	_, span := r.start(ctx, "List", ownerID)
	defer span.End()

	if !order.Valid() {
		return nil, model.ErrValidation
	}

	r.mu.RLock()
	out := make([]T, 0, len(r.items))
	for _, e := range r.items {
		if e.Owner() == ownerID {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	model.Sort(out, order)
	span.SetAttributes(attribute.Int("entity.count", len(out)))
	return out, nil
}

func (r *MemoryRepo[T, P]) Update(ctx context.Context, ownerID, id string, patch P) (T, error) {
	_, span := r.start(ctx, "Update", ownerID, attribute.String("entity.id", id))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || e.Owner() != ownerID {
		var zero T
		return zero, model.ErrNotFound
	}
	e = patch.Apply(e)
	r.items[id] = e
	return e, nil
}

func (r *MemoryRepo[T, P]) Delete(ctx context.Context, ownerID, id string) error {
	_, span := r.start(ctx, "Delete", ownerID, attribute.String("entity.id", id))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok || e.Owner() != ownerID {
		return model.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepo[T, P]) start(ctx context.Context, op, ownerID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("collection", r.name),
		attribute.String("owner.id", ownerID),
	)
	return tracer.Start(ctx, "MemoryRepo."+op, trace.WithAttributes(attrs...))
}
