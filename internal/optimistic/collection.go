package optimistic

import (
	"context"

	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/worker"
)

// Collection is the remote CRUD service for one entity kind. It is the system
// of record; ids are supplied by the caller on Create.
type Collection[T any, P any] interface {
	List(ctx context.Context, ownerID string, order model.Order) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id string, patch P) (T, error)
	Delete(ctx context.Context, id string) error
}

// Dispatcher runs remote calls off the caller's path. *worker.Pool implements it.
type Dispatcher interface {
	Submit(ctx context.Context, job worker.Job)
}

type goroutines struct{}

func (goroutines) Submit(ctx context.Context, job worker.Job) { go job(ctx) }

// Messages are the user-facing notifications of one collection. An empty
// message is not sent.
type Messages struct {
	LoadFailed   string
	Created      string
	CreateFailed string
	Updated      string
	UpdateFailed string
	Deleted      string
	DeleteFailed string
}

type Config struct {
	Name     string
	Order    model.Order
	Messages Messages
}
