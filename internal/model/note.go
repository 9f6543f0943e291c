package model

import (
	"fmt"
	"strings"
	"time"
)

// Color is a presentation label for a note.
type Color string

const (
	ColorDefault Color = "default"
	ColorAmber   Color = "amber"
	ColorRose    Color = "rose"
	ColorViolet  Color = "violet"
	ColorEmerald Color = "emerald"
)

var Colors = []Color{ColorDefault, ColorAmber, ColorRose, ColorViolet, ColorEmerald}

func (c Color) Valid() bool {
	for _, v := range Colors {
		if c == v {
			return true
		}
	}
	return false
}

func ParseColor(s string) (Color, error) {
	if s == "" {
		return ColorDefault, nil
	}
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown color %q", ErrValidation, s)
	}
	return c, nil
}

type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     Color     `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewNote(title, content string, color Color) Note {
	if color == "" {
		color = ColorDefault
	}
	return Note{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
		Color:   color,
	}
}

func (n Note) EntityID() string { return n.ID }
func (n Note) Owner() string { return n.OwnerID }
func (n Note) Created() time.Time { return n.CreatedAt }
func (n Note) Updated() time.Time { return n.UpdatedAt }

func (n Note) Stamp(id, ownerID string, at time.Time) Note {
	n.ID = id
	n.OwnerID = ownerID
	n.CreatedAt = at
	n.UpdatedAt = at
	return n
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !n.Color.Valid() {
		return fmt.Errorf("%w: unknown color %q", ErrValidation, n.Color)
	}
	return nil
}

// Matches reports whether q occurs in the title or content, ignoring case.
func (n Note) Matches(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q)
}

type NotePatch struct {
	Title     *string   `json:"title,omitempty"`
	Content   *string   `json:"content,omitempty"`
	Color     *Color    `json:"color,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p NotePatch) At(ts time.Time) NotePatch {
	p.UpdatedAt = ts
	return p
}

func (p NotePatch) ModifiedAt() time.Time { return p.UpdatedAt }

func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.UpdatedAt.After(n.UpdatedAt) {
		n.UpdatedAt = p.UpdatedAt
	}
	return n
}

// Validate rejects an empty title: a title may be blank while being edited but
// is never persisted blank.
func (p NotePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Color != nil && !p.Color.Valid() {
		return fmt.Errorf("%w: unknown color %q", ErrValidation, *p.Color)
	}
	return nil
}

// NoteOrder lists the most recently edited notes first.
var NoteOrder = Order{Field: FieldUpdatedAt, Desc: true}
