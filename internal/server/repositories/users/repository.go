package users

import (
	"context"

	"github.com/dmitrijs2005/writerlab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetWithCredentialByEmail returns the user and its password hash in one
	// query. The hash is "" when the user has no credential row.
	GetWithCredentialByEmail(ctx context.Context, email string) (*models.User, string, error)
}
