package repo

import (
	"context"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

// Repository - хранилище записей одного владельца
//
// Every method is scoped by owner: a record of another owner is reported as
// model.ErrNotFound, never returned or modified.
type Repository[T model.Entity[T], P model.Patch[T, P]] interface {
	Create(ctx context.Context, entity T) (T, error)
	Get(ctx context.Context, ownerID, id string) (T, error)
	List(ctx context.Context, ownerID string, order model.Order) ([]T, error)
	Update(ctx context.Context, ownerID, id string, patch P) (T, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type TaskRepository = Repository[model.Task, model.TaskPatch]

type NoteRepository = Repository[model.Note, model.NotePatch]

var (
	_ TaskRepository = (*TaskRepo)(nil)
	_ NoteRepository = (*NoteRepo)(nil)
	_ TaskRepository = (*MemoryRepo[model.Task, model.TaskPatch])(nil)
	_ NoteRepository = (*MemoryRepo[model.Note, model.NotePatch])(nil)
)
