package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/notify"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

var fixtureTasks = []model.Task{
	{ID: "id-003", Title: "Buy milk", Status: model.StatusTodo, Priority: model.PriorityHigh},
	{ID: "id-002", Title: "Pay rent", Status: model.StatusInProgress, Priority: model.PriorityMedium},
	{ID: "id-001", Title: "File taxes", Status: model.StatusDone, Priority: model.PriorityLow},
}

var fixtureNotes = []model.Note{
	{ID: "n2", Title: "Groceries", Content: "eggs\nmilk", Color: model.ColorAmber, UpdatedAt: time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)},
	{ID: "n1", Title: "Ideas", Color: model.ColorDefault, UpdatedAt: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)},
}

func TestRenderTasks(t *testing.T) {
	tests := []struct {
		name   string
		tasks  []model.Task
		filter string
		total  int
	}{
		{"tasks_all", fixtureTasks, FilterAll, 3},
		{"tasks_done", fixtureTasks[2:], string(model.StatusDone), 3},
		{"tasks_empty", nil, FilterAll, 0},
		{"tasks_empty_filter", nil, string(model.StatusInProgress), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderTasks(&buf, tt.tasks, tt.filter, tt.total))
			newGoldie(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestRenderNotes(t *testing.T) {
	tests := []struct {
		name   string
		notes  []model.Note
		search string
		total  int
	}{
		{"notes_all", fixtureNotes, "", 2},
		{"notes_search", fixtureNotes[:1], "MILK", 2},
		{"notes_no_match", nil, "zebra", 2},
		{"notes_empty", nil, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderNotes(&buf, tt.notes, tt.search, tt.total))
			newGoldie(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestRenderDashboard(t *testing.T) {
	var buf bytes.Buffer
	stats := Stats{TotalTasks: 3, DoneTasks: 1, InProgressTasks: 1, TotalNotes: 2}
	require.NoError(t, RenderDashboard(&buf, "Good afternoon", "Ann", stats))
	newGoldie(t).Assert(t, "dashboard", buf.Bytes())

	buf.Reset()
	require.NoError(t, RenderDashboard(&buf, "Good morning", "", Stats{}))
	newGoldie(t).Assert(t, "dashboard_empty", buf.Bytes())
}

func TestRenderNotifications(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderNotifications(&buf, []notify.Notification{
		{Level: notify.LevelSuccess, Message: "Task added"},
		{Level: notify.LevelError, Message: "Failed to add task"},
	}))
	newGoldie(t).Assert(t, "notifications", buf.Bytes())
}
