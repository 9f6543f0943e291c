package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Next(t *testing.T) {
	s := StatusTodo
	s = s.Next()
	assert.Equal(t, StatusInProgress, s)
	s = s.Next()
	assert.Equal(t, StatusDone, s)
	s = s.Next()
	assert.Equal(t, StatusTodo, s)
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Priority
		wantErr bool
	}{
		{name: "empty defaults to medium", in: "", want: PriorityMedium},
		{name: "high", in: "high", want: PriorityHigh},
		{name: "mixed case", in: " Low ", want: PriorityLow},
		{name: "unknown", in: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{name: "valid task", task: NewTask("Buy milk", PriorityHigh)},
		{name: "empty title", task: NewTask("", PriorityHigh), wantErr: true},
		{name: "whitespace title", task: NewTask("   ", PriorityLow), wantErr: true},
		{name: "bad status", task: Task{Title: "x", Status: "archived", Priority: PriorityLow}, wantErr: true},
		{name: "bad priority", task: Task{Title: "x", Status: StatusTodo, Priority: "urgent"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTask_Defaults(t *testing.T) {
	task := NewTask("  Buy milk ", "")
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
}

func TestTaskPatch_Apply(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := NewTask("Write report", PriorityLow).Stamp("t1", "u1", created)

	done := StatusDone
	later := created.Add(time.Minute)
	got := TaskPatch{Status: &done}.At(later).Apply(task)

	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "u1", got.OwnerID)

	t.Run("older timestamp does not move updated_at back", func(t *testing.T) {
		older := TaskPatch{Status: &done}.At(created.Add(-time.Hour)).Apply(got)
		assert.Equal(t, later, older.UpdatedAt)
	})
}

func TestTaskPatch_Validate(t *testing.T) {
	empty := "  "
	bad := Status("archived")
	assert.ErrorIs(t, TaskPatch{Title: &empty}.Validate(), ErrValidation)
	assert.ErrorIs(t, TaskPatch{Status: &bad}.Validate(), ErrValidation)
	assert.NoError(t, TaskPatch{}.Validate())
}

func TestSort(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewTask("a", PriorityLow).Stamp("a", "u", base)
	b := NewTask("b", PriorityLow).Stamp("b", "u", base.Add(time.Hour))
	c := NewTask("c", PriorityLow).Stamp("c", "u", base.Add(2*time.Hour))
	a.UpdatedAt = base.Add(3 * time.Hour)

	items := []Task{a, b, c}
	Sort(items, TaskOrder)
	assert.Equal(t, []string{"c", "b", "a"}, ids(items))

	Sort(items, Order{Field: FieldUpdatedAt, Desc: true})
	assert.Equal(t, []string{"a", "c", "b"}, ids(items))

	Sort(items, Order{Field: FieldCreatedAt})
	assert.Equal(t, []string{"a", "b", "c"}, ids(items))
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("", "", NoteOrder)
	require.NoError(t, err)
	assert.Equal(t, NoteOrder, o)

	o, err = ParseOrder("created_at", "asc", NoteOrder)
	require.NoError(t, err)
	assert.Equal(t, Order{Field: FieldCreatedAt}, o)

	_, err = ParseOrder("title", "desc", NoteOrder)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseOrder("created_at", "sideways", NoteOrder)
	assert.ErrorIs(t, err, ErrValidation)
}

func ids(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
