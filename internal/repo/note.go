package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

const noteColumns = `id, owner_id, title, content, color, created_at, updated_at`

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

func (r *NoteRepo) Create(ctx context.Context, n model.Note) (model.Note, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notes (id, owner_id, title, content, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+noteColumns,
		n.ID, n.OwnerID, n.Title, n.Content, string(n.Color), n.CreatedAt, n.UpdatedAt,
	)
	created, err := scanNote(row)
	return created, mapError(err)
}

func (r *NoteRepo) Get(ctx context.Context, ownerID, id string) (model.Note, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	n, err := scanNote(row)
	return n, mapError(err)
}

func (r *NoteRepo) List(ctx context.Context, ownerID string, order model.Order) ([]model.Note, error) {
	orderBy, err := orderClause(order)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+noteColumns+` FROM notes WHERE owner_id = $1 `+orderBy, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepo) Update(ctx context.Context, ownerID, id string, p model.NotePatch) (model.Note, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    color = COALESCE($5, color),
		    updated_at = GREATEST(updated_at, $6)
		WHERE id = $1 AND owner_id = $2
		RETURNING `+noteColumns,
		id, ownerID, p.Title, p.Content, stringPtr(p.Color), p.UpdatedAt,
	)
	n, err := scanNote(row)
	return n, mapError(err)
}

func (r *NoteRepo) Delete(ctx context.Context, ownerID, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (model.Note, error) {
	var (
		n     model.Note
		color string
	)
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &color, &n.CreatedAt, &n.UpdatedAt)
	n.Color = model.Color(color)
	return n, err
}
