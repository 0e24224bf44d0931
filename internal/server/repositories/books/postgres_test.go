package books

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

const (
	qInsert  = `(?s)^INSERT\s+INTO\s+books\s*\(id,\s*title,\s*content,\s*author_id\).*RETURNING\s+created_at,\s*updated_at$`
	qGet     = `(?s)^SELECT\s+id,\s*title,\s*content,\s*preview_image,\s*author_id.*FROM\s+books\s+WHERE\s+id\s*=\s*\$1$`
	qList    = `(?s)^SELECT\s+id,\s*title,\s*preview_image\s+FROM\s+books\s+WHERE\s+author_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`
	qPreview = `(?s)^UPDATE\s+books\s+SET\s+preview_image\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1$`
)

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(qInsert).
		WithArgs(sqlmock.AnyArg(), "Dune", "", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.Create(context.Background(), &models.Book{Title: "Dune", AuthorID: "u-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "", got.Content)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestGetByID(t *testing.T) {
	now := time.Now()
	cols := []string{"id", "title", "content", "preview_image", "author_id", "created_at", "updated_at"}

	t.Run("with preview", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qGet).WithArgs("b-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("b-1", "Dune", "", "users/b-1.png", "u-1", now, now))

		got, err := repo.GetByID(context.Background(), "b-1")
		require.NoError(t, err)
		require.NotNil(t, got.PreviewImage)
		assert.Equal(t, "users/b-1.png", *got.PreviewImage)
	})

	t.Run("without preview", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qGet).WithArgs("b-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("b-1", "Dune", "", nil, "u-1", now, now))

		got, err := repo.GetByID(context.Background(), "b-1")
		require.NoError(t, err)
		assert.Nil(t, got.PreviewImage)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qGet).WithArgs("b-9").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), "b-9")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestListByAuthor(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qList).WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "preview_image"}).
				AddRow("b-2", "Second", "k2").
				AddRow("b-1", "First", nil))

		got, err := repo.ListByAuthor(context.Background(), "u-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b-2", got[0].ID)
		assert.Equal(t, "k2", *got[0].PreviewImage)
		assert.Nil(t, got[1].PreviewImage)
	})

	t.Run("empty is not nil", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qList).WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "preview_image"}))

		got, err := repo.ListByAuthor(context.Background(), "u-1")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(qList).WithArgs("u-1").WillReturnError(errors.New("boom"))

		_, err := repo.ListByAuthor(context.Background(), "u-1")
		assert.Error(t, err)
	})
}

func TestSetPreviewImage(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(qPreview).WithArgs("b-1", "k").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetPreviewImage(context.Background(), "b-1", "k"))
	})

	t.Run("missing book", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(qPreview).WithArgs("b-9", "k").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetPreviewImage(context.Background(), "b-9", "k"), common.ErrorNotFound)
	})
}
