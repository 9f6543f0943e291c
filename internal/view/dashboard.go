package view

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/optimistic"
)

type Stats struct {
	TotalTasks      int `json:"total_tasks"`
	DoneTasks       int `json:"done_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	TotalNotes      int `json:"total_notes"`
}

// CompletionRate is the share of done tasks as a whole percentage, 0 without tasks.
func (s Stats) CompletionRate() int {
	if s.TotalTasks == 0 {
		return 0
	}
	return int(math.Round(float64(s.DoneTasks) / float64(s.TotalTasks) * 100))
}

// Dashboard reads both collections directly from the remote store; it keeps
// no local mirror.
type Dashboard struct {
	tasks optimistic.Collection[model.Task, model.TaskPatch]
	notes optimistic.Collection[model.Note, model.NotePatch]
}

func NewDashboard(tasks optimistic.Collection[model.Task, model.TaskPatch], notes optimistic.Collection[model.Note, model.NotePatch]) *Dashboard {
	return &Dashboard{tasks: tasks, notes: notes}
}

// Stats fetches tasks and notes concurrently. On any failure the zero Stats
// is returned along with the error.
func (d *Dashboard) Stats(ctx context.Context, ownerID string) (Stats, error) {
	var (
		tasks []model.Task
		notes []model.Note
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = d.tasks.List(gctx, ownerID, model.TaskOrder)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = d.notes.List(gctx, ownerID, model.NoteOrder)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	s := Stats{TotalTasks: len(tasks), TotalNotes: len(notes)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusDone:
			s.DoneTasks++
		case model.StatusInProgress:
			s.InProgressTasks++
		}
	}
	return s, nil
}

func Greeting(at time.Time) string {
	switch h := at.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
