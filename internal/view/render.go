package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/notify"
)

var statusLabels = map[model.Status]string{
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusDone:       "Done",
}

var statusMarks = map[model.Status]string{
	model.StatusTodo:       "[ ]",
	model.StatusInProgress: "[~]",
	model.StatusDone:       "[x]",
}

func filterLabel(filter string) string {
	if l, ok := statusLabels[model.Status(filter)]; ok {
		return l
	}
	return "All"
}

// RenderTasks writes the filtered task list; total is the unfiltered count.
func RenderTasks(w io.Writer, tasks []model.Task, filter string, total int) error {
	ew := &errWriter{w: w}
	ew.printf("Tasks (%s): %d of %d\n", filterLabel(filter), len(tasks), total)
	if len(tasks) == 0 {
		hint := "Add your first task above"
		if filter != "" && filter != FilterAll {
			hint = "Try a different filter"
		}
		ew.printf("  No tasks here\n  %s\n", hint)
		return ew.err
	}
	for _, t := range tasks {
		ew.printf("  %s %-11s %-6s %s  (%s)\n", statusMarks[t.Status], statusLabels[t.Status], t.Priority, t.Title, t.ID)
	}
	return ew.err
}

// RenderNotes writes the notes matching search; total is the unfiltered count.
func RenderNotes(w io.Writer, notes []model.Note, search string, total int) error {
	ew := &errWriter{w: w}
	if search != "" {
		ew.printf("Notes: %d of %d matching %q\n", len(notes), total, search)
	} else {
		ew.printf("Notes: %d\n", total)
	}
	if len(notes) == 0 {
		if search != "" {
			ew.printf("  No matching notes\n  Try a different search term\n")
		} else {
			ew.printf("  No notes yet\n  Create your first note above\n")
		}
		return ew.err
	}
	for _, n := range notes {
		ew.printf("  - %s [%s] (%s)\n", n.Title, n.Color, n.ID)
		if n.Content != "" {
			for _, line := range strings.Split(n.Content, "\n") {
				ew.printf("    %s\n", line)
			}
		}
		ew.printf("    edited %s\n", n.UpdatedAt.UTC().Format("2006-01-02 15:04"))
	}
	return ew.err
}

func RenderDashboard(w io.Writer, greeting, name string, s Stats) error {
	ew := &errWriter{w: w}
	if name != "" {
		ew.printf("%s, %s\n", greeting, name)
	} else {
		ew.printf("%s\n", greeting)
	}
	ew.printf("  %-13s %d\n", "Total Tasks", s.TotalTasks)
	ew.printf("  %-13s %d\n", "Completed", s.DoneTasks)
	ew.printf("  %-13s %d\n", "In Progress", s.InProgressTasks)
	ew.printf("  %-13s %d\n", "Notes", s.TotalNotes)
	ew.printf("  %-13s %d%%\n", "Completion", s.CompletionRate())
	return ew.err
}

func RenderNotifications(w io.Writer, ns []notify.Notification) error {
	ew := &errWriter{w: w}
	for _, n := range ns {
		prefix := "ok"
		if n.Level == notify.LevelError {
			prefix = "error"
		}
		ew.printf("%s: %s\n", prefix, n.Message)
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
