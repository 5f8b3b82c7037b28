// Package memory keeps bookmarks in process memory. Contents are lost when
// the process exits.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/vadimbarashkov/bookmarks/internal/entity"
)

type BookmarkRepository struct {
	mu        sync.RWMutex
	nextID    int64
	bookmarks []entity.Bookmark // ordered by id
}

func NewBookmarkRepository() *BookmarkRepository {
	return &BookmarkRepository{nextID: 1}
}

func (r *BookmarkRepository) List(ctx context.Context) ([]entity.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookmarks := make([]entity.Bookmark, len(r.bookmarks))
	copy(bookmarks, r.bookmarks)

	return bookmarks, nil
}

func (r *BookmarkRepository) GetByID(ctx context.Context, id int64) (*entity.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.indexOf(id)
	if !ok {
		return nil, nil
	}

	b := r.bookmarks[i]
	return &b, nil
}

func (r *BookmarkRepository) Insert(ctx context.Context, b entity.Bookmark) (*entity.Bookmark, error) {
	if b.Rating < entity.MinRating || b.Rating > entity.MaxRating {
		return nil, entity.ErrConstraintViolation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b.ID = r.nextID
	r.nextID++
	r.bookmarks = append(r.bookmarks, b)

	return &b, nil
}

func (r *BookmarkRepository) Update(ctx context.Context, id int64, patch entity.BookmarkPatch) error {
	if patch.Rating != nil && (*patch.Rating < entity.MinRating || *patch.Rating > entity.MaxRating) {
		return entity.ErrConstraintViolation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.indexOf(id); ok {
		r.bookmarks[i] = patch.Apply(r.bookmarks[i])
	}

	return nil
}

func (r *BookmarkRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.indexOf(id); ok {
		r.bookmarks = slices.Delete(r.bookmarks, i, i+1)
	}

	return nil
}

// indexOf must be called with mu held.
func (r *BookmarkRepository) indexOf(id int64) (int, bool) {
	return slices.BinarySearchFunc(r.bookmarks, id, func(b entity.Bookmark, id int64) int {
		return cmp.Compare(b.ID, id)
	})
}
