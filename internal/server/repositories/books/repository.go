package books

import (
	"context"

	"github.com/dmitrijs2005/writerlab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.BookSummary, error)
	SetPreviewImage(ctx context.Context, id, key string) error
}
