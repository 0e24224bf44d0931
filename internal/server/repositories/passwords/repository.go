package passwords

import (
	"context"

	"github.com/dmitrijs2005/writerlab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) error
}
