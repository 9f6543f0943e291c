// Package view is the presentation layer over the optimistic stores: the
// task list with its status filter, the note board with search, and the
// dashboard. Renderers produce the plain-text screens the CLI prints.
package view

import (
	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/optimistic"
)

var TaskMessages = optimistic.Messages{
	LoadFailed:   "Failed to load tasks",
	Created:      "Task added",
	CreateFailed: "Failed to add task",
	UpdateFailed: "Failed to update task",
	Deleted:      "Task deleted",
	DeleteFailed: "Failed to delete task",
}

var NoteMessages = optimistic.Messages{
	LoadFailed:   "Failed to load notes",
	Created:      "Note saved",
	CreateFailed: "Failed to save note",
	UpdateFailed: "Failed to update note",
	Deleted:      "Note deleted",
	DeleteFailed: "Failed to delete note",
}

type (
	TaskStore = optimistic.Store[model.Task, model.TaskPatch]
	NoteStore = optimistic.Store[model.Note, model.NotePatch]
)

func NewTaskStore(remote optimistic.Collection[model.Task, model.TaskPatch], opts ...optimistic.Option) *TaskStore {
	return optimistic.New[model.Task, model.TaskPatch](remote, optimistic.Config{
		Name:     "tasks",
		Order:    model.TaskOrder,
		Messages: TaskMessages,
	}, opts...)
}

func NewNoteStore(remote optimistic.Collection[model.Note, model.NotePatch], opts ...optimistic.Option) *NoteStore {
	return optimistic.New[model.Note, model.NotePatch](remote, optimistic.Config{
		Name:     "notes",
		Order:    model.NoteOrder,
		Messages: NoteMessages,
	}, opts...)
}
