package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/bookmarks/internal/entity"
	"github.com/vadimbarashkov/bookmarks/pkg/database"
)

func ptr[T any](v T) *T {
	return &v
}

type BookmarkRepositoryTestSuite struct {
	suite.Suite
	errUnknown error
	columns    []string
	mock       sqlmock.Sqlmock
	repo       *BookmarkRepository
}

func (suite *BookmarkRepositoryTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.columns = []string{"id", "title", "url", "description", "rating"}
}

func (suite *BookmarkRepositoryTestSuite) SetupSubTest() {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		suite.T().Fatalf("Failed to create mock database: %v", err)
	}
	suite.T().Cleanup(func() {
		mockDB.Close()
	})

	db := sqlx.NewDb(mockDB, "pgx")

	suite.mock = mock
	suite.repo = NewBookmarkRepository(db)
}

func (suite *BookmarkRepositoryTestSuite) TearDownSubTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *BookmarkRepositoryTestSuite) TestList() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM bookmarks ORDER BY id`).
			WillReturnError(suite.errUnknown)

		bookmarks, err := suite.repo.List(context.Background())

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(bookmarks)
	})

	suite.Run("empty table", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM bookmarks ORDER BY id`).
			WillReturnRows(sqlmock.NewRows(suite.columns))

		bookmarks, err := suite.repo.List(context.Background())

		suite.NoError(err)
		suite.NotNil(bookmarks)
		suite.Empty(bookmarks)
	})

	suite.Run("success", func() {
		rows := sqlmock.NewRows(suite.columns).
			AddRow(1, "REI", "https://www.rei.com/", nil, 4).
			AddRow(2, "Go", "https://go.dev/", "The Go website", 5)

		suite.mock.ExpectQuery(`SELECT (.+) FROM bookmarks ORDER BY id`).
			WillReturnRows(rows)

		bookmarks, err := suite.repo.List(context.Background())

		suite.NoError(err)
		suite.Equal([]entity.Bookmark{
			{ID: 1, Title: "REI", URL: "https://www.rei.com/", Rating: 4},
			{ID: 2, Title: "Go", URL: "https://go.dev/", Description: "The Go website", Rating: 5},
		}, bookmarks)
	})
}

func (suite *BookmarkRepositoryTestSuite) TestGetByID() {
	suite.Run("bookmark not found", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM bookmarks WHERE id = \$1`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(suite.columns))

		b, err := suite.repo.GetByID(context.Background(), 1)

		suite.NoError(err)
		suite.Nil(b)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM bookmarks WHERE id = \$1`).
			WithArgs(1).
			WillReturnError(suite.errUnknown)

		b, err := suite.repo.GetByID(context.Background(), 1)

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(b)
	})

	suite.Run("success", func() {
		rows := sqlmock.NewRows(suite.columns).
			AddRow(1, "REI", "https://www.rei.com/", "Outdoor gear", 4)

		suite.mock.ExpectQuery(`SELECT (.+) FROM bookmarks WHERE id = \$1`).
			WithArgs(1).
			WillReturnRows(rows)

		b, err := suite.repo.GetByID(context.Background(), 1)

		suite.NoError(err)
		suite.Equal(&entity.Bookmark{
			ID:          1,
			Title:       "REI",
			URL:         "https://www.rei.com/",
			Description: "Outdoor gear",
			Rating:      4,
		}, b)
	})
}

func (suite *BookmarkRepositoryTestSuite) TestInsert() {
	b := entity.Bookmark{Title: "REI", URL: "https://www.rei.com/", Rating: 4}

	suite.Run("constraint violation", func() {
		suite.mock.ExpectQuery(`INSERT INTO bookmarks`).
			WithArgs("REI", "https://www.rei.com/", nil, 4).
			WillReturnError(&pgconn.PgError{Code: "23514"})

		created, err := suite.repo.Insert(context.Background(), b)

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrConstraintViolation)
		suite.Nil(created)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`INSERT INTO bookmarks`).
			WithArgs("REI", "https://www.rei.com/", nil, 4).
			WillReturnError(suite.errUnknown)

		created, err := suite.repo.Insert(context.Background(), b)

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.NotErrorIs(err, entity.ErrConstraintViolation)
		suite.Nil(created)
	})

	suite.Run("success", func() {
		withDescription := b
		withDescription.Description = "Outdoor gear"

		rows := sqlmock.NewRows(suite.columns).
			AddRow(7, "REI", "https://www.rei.com/", "Outdoor gear", 4)

		suite.mock.ExpectQuery(`INSERT INTO bookmarks (.+) RETURNING`).
			WithArgs("REI", "https://www.rei.com/", "Outdoor gear", 4).
			WillReturnRows(rows)

		created, err := suite.repo.Insert(context.Background(), withDescription)

		suite.NoError(err)
		suite.NotNil(created)
		suite.Equal(int64(7), created.ID)
		suite.Equal("Outdoor gear", created.Description)
	})
}

func (suite *BookmarkRepositoryTestSuite) TestUpdate() {
	suite.Run("empty patch", func() {
		err := suite.repo.Update(context.Background(), 1, entity.BookmarkPatch{})

		suite.NoError(err)
	})

	suite.Run("single field", func() {
		suite.mock.ExpectExec(`UPDATE bookmarks SET rating = \$1 WHERE id = \$2`).
			WithArgs(0, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.repo.Update(context.Background(), 1, entity.BookmarkPatch{Rating: ptr(0)})

		suite.NoError(err)
	})

	suite.Run("all fields", func() {
		suite.mock.ExpectExec(`UPDATE bookmarks SET title = \$1, url = \$2, description = \$3, rating = \$4 WHERE id = \$5`).
			WithArgs("Go", "https://go.dev/", "Docs", 5, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.repo.Update(context.Background(), 1, entity.BookmarkPatch{
			Title:       ptr("Go"),
			URL:         ptr("https://go.dev/"),
			Description: ptr("Docs"),
			Rating:      ptr(5),
		})

		suite.NoError(err)
	})

	suite.Run("no rows affected", func() {
		suite.mock.ExpectExec(`UPDATE bookmarks SET title = \$1 WHERE id = \$2`).
			WithArgs("Go", 42).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := suite.repo.Update(context.Background(), 42, entity.BookmarkPatch{Title: ptr("Go")})

		suite.NoError(err)
	})

	suite.Run("constraint violation", func() {
		suite.mock.ExpectExec(`UPDATE bookmarks`).
			WithArgs(9, 1).
			WillReturnError(&pgconn.PgError{Code: "23514"})

		err := suite.repo.Update(context.Background(), 1, entity.BookmarkPatch{Rating: ptr(9)})

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrConstraintViolation)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectExec(`UPDATE bookmarks`).
			WithArgs("Go", 1).
			WillReturnError(suite.errUnknown)

		err := suite.repo.Update(context.Background(), 1, entity.BookmarkPatch{Title: ptr("Go")})

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
	})
}

func (suite *BookmarkRepositoryTestSuite) TestDelete() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectExec(`DELETE FROM bookmarks WHERE id = \$1`).
			WithArgs(1).
			WillReturnError(suite.errUnknown)

		err := suite.repo.Delete(context.Background(), 1)

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("no rows affected", func() {
		suite.mock.ExpectExec(`DELETE FROM bookmarks WHERE id = \$1`).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := suite.repo.Delete(context.Background(), 1)

		suite.NoError(err)
	})

	suite.Run("success", func() {
		suite.mock.ExpectExec(`DELETE FROM bookmarks WHERE id = \$1`).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.repo.Delete(context.Background(), 1)

		suite.NoError(err)
	})
}

func TestBookmarkRepository(t *testing.T) {
	suite.Run(t, new(BookmarkRepositoryTestSuite))
}

func newSQLiteRepository(t *testing.T) *BookmarkRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), "bookmarks.db"))
	require.NoError(t, database.RunMigrations(database.DriverSQLite, dsn))

	db, err := database.New(context.Background(), database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return NewBookmarkRepository(db)
}

func TestBookmarkRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	bookmarks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)

	first, err := repo.Insert(ctx, entity.Bookmark{Title: "REI", URL: "https://www.rei.com/", Rating: 4})
	require.NoError(t, err)
	second, err := repo.Insert(ctx, entity.Bookmark{Title: "Go", URL: "https://go.dev/", Description: "Docs", Rating: 5})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Empty(t, first.Description)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = repo.Insert(ctx, entity.Bookmark{Title: "Bad", URL: "https://bad.example/", Rating: 6})
	assert.ErrorIs(t, err, entity.ErrConstraintViolation)

	require.NoError(t, repo.Update(ctx, first.ID, entity.BookmarkPatch{Rating: ptr(0), Description: ptr("Gear")}))

	got, err = repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, &entity.Bookmark{ID: first.ID, Title: "REI", URL: "https://www.rei.com/", Description: "Gear", Rating: 0}, got)

	bookmarks, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)
	assert.Equal(t, first.ID, bookmarks[0].ID)
	assert.Equal(t, second.ID, bookmarks[1].ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.NoError(t, repo.Delete(ctx, first.ID))

	got, err = repo.GetByID(ctx, first.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
