package model

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
)

// Entity is an owner-scoped record with a client-generated id.
type Entity[T any] interface {
	EntityID() string
	Owner() string
	Created() time.Time
	Updated() time.Time
	// Stamp assigns identity and sets both timestamps to at.
	Stamp(id, ownerID string, at time.Time) T
	Validate() error
}

// Patch is a partial update to T that carries its own modification time.
type Patch[T any, P any] interface {
	Apply(T) T
	At(ts time.Time) P
	// ModifiedAt is the zero time for a patch that has not been stamped yet.
	ModifiedAt() time.Time
	Validate() error
}

const (
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

type Order struct {
	Field string
	Desc  bool
}

func (o Order) Valid() bool {
	return o.Field == FieldCreatedAt || o.Field == FieldUpdatedAt
}

func (o Order) Direction() string {
	if o.Desc {
		return "desc"
	}
	return "asc"
}

// ParseOrder falls back to def for an empty field.
func ParseOrder(field, dir string, def Order) (Order, error) {
	if field == "" {
		return def, nil
	}
	o := Order{Field: field, Desc: dir != "asc"}
	if !o.Valid() || (dir != "" && dir != "asc" && dir != "desc") {
		return Order{}, ErrValidation
	}
	return o, nil
}

// Sort orders items in place by o, breaking ties by id.
func Sort[T Entity[T]](items []T, o Order) {
	key := func(e T) time.Time { return e.Created() }
	if o.Field == FieldUpdatedAt {
		key = func(e T) time.Time { return e.Updated() }
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if a.Equal(b) {
			if o.Desc {
				return items[i].EntityID() > items[j].EntityID()
			}
			return items[i].EntityID() < items[j].EntityID()
		}
		if o.Desc {
			return a.After(b)
		}
		return a.Before(b)
	})
}
