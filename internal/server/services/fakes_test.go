package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/dbx"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/dmitrijs2005/writerlab/internal/server/passwords"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/books"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/outlines"
	passwordsrepo "github.com/dmitrijs2005/writerlab/internal/server/repositories/passwords"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// memStore backs the fake repositories. Transactions are not simulated:
// writes made before a rollback stay visible.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	creds    map[string]string
	books    map[string]*models.Book
	outlines []models.Outline

	hideEmails     bool // GetByEmail misses, as if another signup had not committed yet
	errGetByEmail  error
	errGetByID     error
	errCreateCred  error
	errListBooks   error
	blockGetByID   bool
	getByIDCalls   int
	previewUpdates map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		users:          map[string]*models.User{},
		creds:          map[string]string{},
		books:          map[string]*models.Book{},
		previewUpdates: map[string]string{},
	}
}

func (s *memStore) addUser(t *testing.T, h passwords.Hasher, email, password string) *models.User {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.users[u.ID] = u
	if password != "" {
		hash, err := h.Hash(password)
		require.NoError(t, err)
		s.creds[u.ID] = hash
	}
	return u
}

func (s *memStore) addBook(authorID, title string) *models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &models.Book{ID: uuid.NewString(), Title: title, AuthorID: authorID, CreatedAt: time.Now()}
	s.books[b.ID] = b
	return b
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                { return &memUsers{m.s} }
func (m *fakeRepoManager) Passwords(dbx.DBTX) passwordsrepo.Repository    { return &memPasswords{m.s} }
func (m *fakeRepoManager) Books(dbx.DBTX) books.Repository                { return &memBooks{m.s} }
func (m *fakeRepoManager) Outlines(dbx.DBTX) outlines.Repository          { return &memOutlines{m.s} }

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505"})
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	r.s.getByIDCalls++
	block, errGet := r.s.blockGetByID, r.s.errGetByID
	r.s.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, fmt.Errorf("db error: %w", ctx.Err())
	}
	if errGet != nil {
		return nil, errGet
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.errGetByEmail != nil {
		return nil, r.s.errGetByEmail
	}
	if r.s.hideEmails {
		return nil, common.ErrorNotFound
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetWithCredentialByEmail(_ context.Context, email string) (*models.User, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.errGetByEmail != nil {
		return nil, "", r.s.errGetByEmail
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, r.s.creds[u.ID], nil
		}
	}
	return nil, "", common.ErrorNotFound
}

type memPasswords struct{ s *memStore }

func (r *memPasswords) Create(_ context.Context, c *models.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.errCreateCred != nil {
		return r.s.errCreateCred
	}
	r.s.creds[c.UserID] = c.Hash
	return nil
}

type memBooks struct{ s *memStore }

func (r *memBooks) Create(_ context.Context, b *models.Book) (*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	cp := *b
	r.s.books[b.ID] = &cp
	return b, nil
}

func (r *memBooks) GetByID(_ context.Context, id string) (*models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBooks) ListByAuthor(_ context.Context, authorID string) ([]models.BookSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.errListBooks != nil {
		return nil, r.s.errListBooks
	}
	out := make([]models.BookSummary, 0)
	for _, b := range r.s.books {
		if b.AuthorID == authorID {
			out = append(out, models.BookSummary{ID: b.ID, Title: b.Title, PreviewImage: b.PreviewImage})
		}
	}
	return out, nil
}

func (r *memBooks) SetPreviewImage(_ context.Context, id, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return common.ErrorNotFound
	}
	k := key
	b.PreviewImage = &k
	r.s.previewUpdates[id] = key
	return nil
}

type memOutlines struct{ s *memStore }

func (r *memOutlines) Create(_ context.Context, o *models.Outline) (*models.Outline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = time.Now()
	r.s.outlines = append(r.s.outlines, *o)
	return o, nil
}

func (r *memOutlines) ListByBook(_ context.Context, bookID string) ([]models.Outline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Outline, 0)
	for _, o := range r.s.outlines {
		if o.BookID == bookID {
			out = append(out, o)
		}
	}
	return out, nil
}

// countingHasher records how many bcrypt comparisons a call performed.
type countingHasher struct {
	*passwords.Bcrypt
	mu       sync.Mutex
	compares int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{Bcrypt: passwords.NewBcryptWithCost(bcrypt.MinCost)}
}

func (h *countingHasher) Compare(plain, hash string) bool {
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	return h.Bcrypt.Compare(plain, hash)
}

func (h *countingHasher) reset() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.compares
	h.compares = 0
	return n
}
