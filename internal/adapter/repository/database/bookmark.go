package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/bookmarks/internal/entity"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const integrityViolationClass = "23"

const bookmarkColumns = `id, title, url, description, rating`

// isConstraintViolation reports whether err was raised by a table constraint
// in either supported database.
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, integrityViolationClass)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	return false
}

type bookmarkRecord struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	URL         string         `db:"url"`
	Description sql.NullString `db:"description"`
	Rating      int            `db:"rating"`
}

func (r *bookmarkRecord) toEntity() *entity.Bookmark {
	return &entity.Bookmark{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description.String,
		Rating:      r.Rating,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type BookmarkRepository struct {
	db *sqlx.DB
}

func NewBookmarkRepository(db *sqlx.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

func (r *BookmarkRepository) List(ctx context.Context) ([]entity.Bookmark, error) {
	const op = "adapter.repository.database.BookmarkRepository.List"
	const query = `SELECT ` + bookmarkColumns + ` FROM bookmarks ORDER BY id`

	var records []bookmarkRecord

	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from bookmarks table: %w", op, err)
	}

	bookmarks := make([]entity.Bookmark, 0, len(records))
	for i := range records {
		bookmarks = append(bookmarks, *records[i].toEntity())
	}

	return bookmarks, nil
}

// GetByID returns nil and no error when no row has the id.
func (r *BookmarkRepository) GetByID(ctx context.Context, id int64) (*entity.Bookmark, error) {
	const op = "adapter.repository.database.BookmarkRepository.GetByID"
	const query = `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE id = ?`

	var record bookmarkRecord

	if err := r.db.GetContext(ctx, &record, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: failed to get row from bookmarks table: %w", op, err)
	}

	return record.toEntity(), nil
}

func (r *BookmarkRepository) Insert(ctx context.Context, b entity.Bookmark) (*entity.Bookmark, error) {
	const op = "adapter.repository.database.BookmarkRepository.Insert"
	const query = `INSERT INTO bookmarks (title, url, description, rating) VALUES (?, ?, ?, ?) RETURNING ` + bookmarkColumns

	var record bookmarkRecord

	err := r.db.GetContext(ctx, &record, r.db.Rebind(query), b.Title, b.URL, nullString(b.Description), b.Rating)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrConstraintViolation, err)
		}

		return nil, fmt.Errorf("%s: failed to insert into bookmarks table: %w", op, err)
	}

	return record.toEntity(), nil
}

// Update writes only the fields set in patch. Updating a missing row is not
// an error.
func (r *BookmarkRepository) Update(ctx context.Context, id int64, patch entity.BookmarkPatch) error {
	const op = "adapter.repository.database.BookmarkRepository.Update"

	var (
		sets []string
		args []any
	)

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *patch.URL)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(*patch.Description))
	}
	if patch.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *patch.Rating)
	}

	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE bookmarks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%s: %w: %w", op, entity.ErrConstraintViolation, err)
		}

		return fmt.Errorf("%s: failed to update bookmarks table row: %w", op, err)
	}

	return nil
}

// Delete removes the row with the id. Deleting a missing row is not an error.
func (r *BookmarkRepository) Delete(ctx context.Context, id int64) error {
	const op = "adapter.repository.database.BookmarkRepository.Delete"
	const query = `DELETE FROM bookmarks WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), id); err != nil {
		return fmt.Errorf("%s: failed to delete from bookmarks table: %w", op, err)
	}

	return nil
}
