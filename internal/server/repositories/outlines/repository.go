package outlines

import (
	"context"

	"github.com/dmitrijs2005/writerlab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Outline) (*models.Outline, error)
	ListByBook(ctx context.Context, bookID string) ([]models.Outline, error)
}
