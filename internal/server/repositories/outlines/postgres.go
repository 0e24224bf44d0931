// Package outlines stores outline items of books.
package outlines

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/writerlab/internal/dbx"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores item as given. Positions are not renumbered, so two items may
// share one.
func (r *PostgresRepository) Create(ctx context.Context, item *models.Outline) (*models.Outline, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO outlines (id, book_id, title, level, position)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, item.ID, item.BookID, item.Title, item.Level, item.Position).
		Scan(&item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// ListByBook returns the outline ordered by position, then insertion time.
func (r *PostgresRepository) ListByBook(ctx context.Context, bookID string) ([]models.Outline, error) {
	query :=
		`SELECT id, book_id, title, level, position, created_at
		 FROM outlines
		 WHERE book_id = $1
		 ORDER BY position ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.Outline, 0)
	for rows.Next() {
		var o models.Outline
		if err := rows.Scan(&o.ID, &o.BookID, &o.Title, &o.Level, &o.Position, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}
