package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPresigner struct {
	url     string
	err     error
	gotKeys []string
}

func (p *stubPresigner) PresignPut(_ context.Context, key string) (string, time.Time, error) {
	p.gotKeys = append(p.gotKeys, key)
	if p.err != nil {
		return "", time.Time{}, p.err
	}
	return p.url + key, time.Now().Add(time.Minute), nil
}

func newBookFixture(t *testing.T, presigner Presigner) (*BookService, *memStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	return NewBookService(db, &fakeRepoManager{s: store}, presigner, logging.Nop()), store, mock
}

func TestCreateBook(t *testing.T) {
	svc, store, _ := newBookFixture(t, nil)

	b, err := svc.CreateBook(context.Background(), "author-1", "  Dune ")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "", b.Content)
	assert.Equal(t, "author-1", b.AuthorID)
	assert.Contains(t, store.books, b.ID)

	_, err = svc.CreateBook(context.Background(), "author-1", "   ")
	assert.ErrorIs(t, err, common.ErrorIncorrectFields)
}

func TestListBooks(t *testing.T) {
	svc, store, _ := newBookFixture(t, nil)
	store.addBook("author-1", "A")
	store.addBook("author-1", "B")
	store.addBook("author-2", "C")

	got, err := svc.ListBooks(context.Background(), "author-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	store.errListBooks = errors.New("down")
	_, err = svc.ListBooks(context.Background(), "author-1")
	assert.Error(t, err)
}

func TestGetBook(t *testing.T) {
	t.Run("own book with outline", func(t *testing.T) {
		svc, store, mock := newBookFixture(t, nil)
		b := store.addBook("author-1", "Dune")
		mock.ExpectBegin()
		mock.ExpectCommit()

		_, err := svc.CreateOutlineItem(context.Background(), "author-1", b.ID, "Intro", 1, 0)
		require.NoError(t, err)

		got, err := svc.GetBook(context.Background(), "author-1", b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
		require.Len(t, got.Outline, 1)
		assert.Equal(t, "Intro", got.Outline[0].Title)
	})

	t.Run("other author's book is not found", func(t *testing.T) {
		svc, store, mock := newBookFixture(t, nil)
		b := store.addBook("author-2", "Secret")
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.GetBook(context.Background(), "author-1", b.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("missing book", func(t *testing.T) {
		svc, _, mock := newBookFixture(t, nil)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.GetBook(context.Background(), "author-1", uuid.NewString())
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("malformed id never reaches the store", func(t *testing.T) {
		svc, _, _ := newBookFixture(t, nil)

		_, err := svc.GetBook(context.Background(), "author-1", "not-a-uuid")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestCreateOutlineItem(t *testing.T) {
	svc, store, _ := newBookFixture(t, nil)
	b := store.addBook("author-1", "Dune")
	other := store.addBook("author-2", "Other")

	tests := []struct {
		name     string
		author   string
		bookID   string
		title    string
		level    int
		position int
		wantErr  error
	}{
		{"ok", "author-1", b.ID, "Chapter 1", 1, 0, nil},
		{"same position allowed", "author-1", b.ID, "Chapter 1b", 2, 0, nil},
		{"empty title", "author-1", b.ID, " ", 1, 0, common.ErrorIncorrectFields},
		{"level zero", "author-1", b.ID, "x", 0, 0, common.ErrorIncorrectFields},
		{"negative position", "author-1", b.ID, "x", 1, -1, common.ErrorIncorrectFields},
		{"foreign book", "author-1", other.ID, "x", 1, 0, common.ErrorNotFound},
		{"bad id", "author-1", "nope", "x", 1, 0, common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := svc.CreateOutlineItem(context.Background(), tt.author, tt.bookID, tt.title, tt.level, tt.position)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bookID, o.BookID)
			assert.Equal(t, tt.position, o.Position)
		})
	}
	assert.Len(t, store.outlines, 2)
}

func TestCreatePreviewUpload(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		p := &stubPresigner{url: "http://s3.local/bucket/"}
		svc, store, _ := newBookFixture(t, p)
		b := store.addBook("author-1", "Dune")

		up, err := svc.CreatePreviewUpload(context.Background(), "author-1", b.ID)
		require.NoError(t, err)
		require.Len(t, p.gotKeys, 1)
		assert.Equal(t, p.gotKeys[0], up.Key)
		assert.True(t, strings.HasPrefix(up.Key, "previews/"))
		assert.Contains(t, up.Key, b.ID)
		assert.Equal(t, "http://s3.local/bucket/"+up.Key, up.URL)
		assert.Equal(t, up.Key, store.previewUpdates[b.ID])
	})

	t.Run("foreign book", func(t *testing.T) {
		p := &stubPresigner{}
		svc, store, _ := newBookFixture(t, p)
		b := store.addBook("author-2", "Dune")

		_, err := svc.CreatePreviewUpload(context.Background(), "author-1", b.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.Empty(t, p.gotKeys)
	})

	t.Run("presign fails", func(t *testing.T) {
		p := &stubPresigner{err: errors.New("no creds")}
		svc, store, _ := newBookFixture(t, p)
		b := store.addBook("author-1", "Dune")

		_, err := svc.CreatePreviewUpload(context.Background(), "author-1", b.ID)
		assert.ErrorIs(t, err, common.ErrorInternal)
		assert.Empty(t, store.previewUpdates)
	})

	t.Run("no presigner configured", func(t *testing.T) {
		svc, store, _ := newBookFixture(t, nil)
		b := store.addBook("author-1", "Dune")

		_, err := svc.CreatePreviewUpload(context.Background(), "author-1", b.ID)
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}
