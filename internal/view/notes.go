package view

import (
	"context"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

type NotesView struct {
	store *NoteStore
}

func NewNotesView(store *NoteStore) *NotesView {
	return &NotesView{store: store}
}

func (v *NotesView) Store() *NoteStore { return v.store }

func (v *NotesView) Create(ctx context.Context, title, content string, color model.Color) (model.Note, error) {
	return v.store.Create(ctx, model.NewNote(title, content, color))
}

func (v *NotesView) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	return v.store.Update(ctx, id, patch)
}

func (v *NotesView) Delete(ctx context.Context, id string) error {
	return v.store.Delete(ctx, id)
}

// Search returns the notes whose title or content contains q, ignoring case.
// An empty query matches everything.
func (v *NotesView) Search(q string) []model.Note {
	items := v.store.Items()
	if q == "" {
		return items
	}
	out := make([]model.Note, 0, len(items))
	for _, n := range items {
		if n.Matches(q) {
			out = append(out, n)
		}
	}
	return out
}
