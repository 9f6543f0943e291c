package view

import (
	"context"
	"fmt"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

// FilterAll selects every task regardless of status.
const FilterAll = "all"

type TasksView struct {
	store *TaskStore
}

func NewTasksView(store *TaskStore) *TasksView {
	return &TasksView{store: store}
}

func (v *TasksView) Store() *TaskStore { return v.store }

// Add creates a todo task. A blank title is rejected before anything changes.
func (v *TasksView) Add(ctx context.Context, title string, priority model.Priority) (model.Task, error) {
	return v.store.Create(ctx, model.NewTask(title, priority))
}

// CycleStatus advances a task to the next status: todo, in-progress, done, todo.
func (v *TasksView) CycleStatus(ctx context.Context, id string) (model.Task, error) {
	t, ok := v.store.Get(id)
	if !ok {
		return model.Task{}, model.ErrNotFound
	}
	return v.SetStatus(ctx, id, t.Status.Next())
}

func (v *TasksView) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	return v.store.Update(ctx, id, model.TaskPatch{Status: &status})
}

func (v *TasksView) Delete(ctx context.Context, id string) error {
	return v.store.Delete(ctx, id)
}

// Filter returns the tasks with the given status, or all of them for
// FilterAll or an empty filter.
func (v *TasksView) Filter(filter string) ([]model.Task, error) {
	items := v.store.Items()
	if filter == "" || filter == FilterAll {
		return items, nil
	}
	status := model.Status(filter)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status filter %q", model.ErrValidation, filter)
	}

	out := make([]model.Task, 0, len(items))
	for _, t := range items {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (v *TasksView) Total() int { return v.store.Len() }
