package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/dbx"
	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// BookService manages books and their outlines. Every call is scoped to an
// author; books of other authors are reported as not found.
type BookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   Presigner
	log         logging.Logger
	now         func() time.Time
}

// NewBookService builds the service. presigner may be nil, in which case
// preview uploads fail with common.ErrorInternal.
func NewBookService(db *sql.DB, m repomanager.RepositoryManager, presigner Presigner, log logging.Logger) *BookService {
	return &BookService{
		db:          db,
		repomanager: m,
		presigner:   presigner,
		log:         log.With("module", "books"),
		now:         time.Now,
	}
}

// CreateBook starts an empty book for authorID.
func (s *BookService) CreateBook(ctx context.Context, authorID, title string) (*models.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.ErrorIncorrectFields
	}

	return s.repomanager.Books(s.db).Create(ctx, &models.Book{
		Title:    title,
		Content:  "",
		AuthorID: authorID,
	})
}

func (s *BookService) ListBooks(ctx context.Context, authorID string) ([]models.BookSummary, error) {
	return s.repomanager.Books(s.db).ListByAuthor(ctx, authorID)
}

// GetBook returns the book with its outline ordered by position. Both reads
// share one read-only transaction.
func (s *BookService) GetBook(ctx context.Context, authorID, bookID string) (*models.Book, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return nil, common.ErrorNotFound
	}

	var book *models.Book
	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		b, err := s.ownedBook(ctx, tx, authorID, bookID)
		if err != nil {
			return err
		}
		items, err := s.repomanager.Outlines(tx).ListByBook(ctx, b.ID)
		if err != nil {
			return err
		}
		b.Outline = items
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// CreateOutlineItem appends an outline item. Positions are stored as given.
func (s *BookService) CreateOutlineItem(ctx context.Context, authorID, bookID, title string, level, position int) (*models.Outline, error) {
	title = strings.TrimSpace(title)
	if title == "" || level < 1 || position < 0 {
		return nil, common.ErrorIncorrectFields
	}
	if _, err := uuid.Parse(bookID); err != nil {
		return nil, common.ErrorNotFound
	}

	if _, err := s.ownedBook(ctx, s.db, authorID, bookID); err != nil {
		return nil, err
	}

	return s.repomanager.Outlines(s.db).Create(ctx, &models.Outline{
		BookID:   bookID,
		Title:    title,
		Level:    level,
		Position: position,
	})
}

// CreatePreviewUpload reserves a new object key for the book's preview
// image, records it on the book and returns a presigned PUT URL for it.
func (s *BookService) CreatePreviewUpload(ctx context.Context, authorID, bookID string) (*models.PreviewUpload, error) {
	if s.presigner == nil {
		return nil, common.ErrorInternal
	}
	if _, err := uuid.Parse(bookID); err != nil {
		return nil, common.ErrorNotFound
	}

	books := s.repomanager.Books(s.db)
	if _, err := s.ownedBook(ctx, s.db, authorID, bookID); err != nil {
		return nil, err
	}

	key := PreviewStorageKey(bookID, s.now())
	url, expiresAt, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		s.log.Error(ctx, "presign failed", "book_id", bookID, "error", err)
		return nil, common.ErrorInternal
	}

	if err := books.SetPreviewImage(ctx, bookID, key); err != nil {
		return nil, err
	}

	return &models.PreviewUpload{BookID: bookID, Key: key, URL: url, Expiry: expiresAt}, nil
}

func (s *BookService) ownedBook(ctx context.Context, db dbx.DBTX, authorID, bookID string) (*models.Book, error) {
	b, err := s.repomanager.Books(db).GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b.AuthorID != authorID {
		return nil, common.ErrorNotFound
	}
	return b, nil
}
