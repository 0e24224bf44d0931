// Package books stores books in PostgreSQL.
package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/writerlab/internal/common"
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

func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO books (id, title, content, author_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, book.ID, book.Title, book.Content, book.AuthorID).
		Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return book, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	query :=
		`SELECT id, title, content, preview_image, author_id, created_at, updated_at
		 FROM books
		 WHERE id = $1`

	b := &models.Book{}
	var preview sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.Title, &b.Content, &preview, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if preview.Valid {
		b.PreviewImage = &preview.String
	}

	return b, nil
}

// ListByAuthor returns the author's books, newest first.
func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.BookSummary, error) {
	query :=
		`SELECT id, title, preview_image
		 FROM books
		 WHERE author_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.BookSummary, 0)
	for rows.Next() {
		var s models.BookSummary
		var preview sql.NullString
		if err := rows.Scan(&s.ID, &s.Title, &preview); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if preview.Valid {
			s.PreviewImage = &preview.String
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetPreviewImage(ctx context.Context, id, key string) error {
	query :=
		`UPDATE books SET preview_image = $2, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
