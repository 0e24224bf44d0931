// Package passwords stores the one-to-one user credential rows.
package passwords

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/writerlab/internal/dbx"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
)

// PostgresRepository works over dbx.DBTX so that credential inserts can join
// the user insert's transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) error {
	query :=
		`INSERT INTO passwords (user_id, hash)
		 VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, c.UserID, c.Hash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
