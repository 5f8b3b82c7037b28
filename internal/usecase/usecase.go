package usecase

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/bookmarks/internal/entity"
)

type bookmarkRepository interface {
	List(ctx context.Context) ([]entity.Bookmark, error)
	GetByID(ctx context.Context, id int64) (*entity.Bookmark, error)
	Insert(ctx context.Context, b entity.Bookmark) (*entity.Bookmark, error)
	Update(ctx context.Context, id int64, patch entity.BookmarkPatch) error
	Delete(ctx context.Context, id int64) error
}

type BookmarkUseCase struct {
	bookmarkRepo bookmarkRepository
}

func NewBookmarkUseCase(bookmarkRepo bookmarkRepository) *BookmarkUseCase {
	return &BookmarkUseCase{
		bookmarkRepo: bookmarkRepo,
	}
}

func (uc *BookmarkUseCase) ListBookmarks(ctx context.Context) ([]entity.Bookmark, error) {
	const op = "usecase.BookmarkUseCase.ListBookmarks"

	bookmarks, err := uc.bookmarkRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list bookmarks: %w", op, err)
	}

	if bookmarks == nil {
		bookmarks = []entity.Bookmark{}
	}

	return bookmarks, nil
}

func (uc *BookmarkUseCase) CreateBookmark(ctx context.Context, b entity.Bookmark) (*entity.Bookmark, error) {
	const op = "usecase.BookmarkUseCase.CreateBookmark"

	created, err := uc.bookmarkRepo.Insert(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create bookmark: %w", op, err)
	}

	return created, nil
}

// GetBookmark returns entity.ErrBookmarkNotFound when no bookmark has the id.
func (uc *BookmarkUseCase) GetBookmark(ctx context.Context, id int64) (*entity.Bookmark, error) {
	const op = "usecase.BookmarkUseCase.GetBookmark"

	b, err := uc.bookmarkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get bookmark: %w", op, err)
	}

	if b == nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrBookmarkNotFound)
	}

	return b, nil
}

func (uc *BookmarkUseCase) ModifyBookmark(ctx context.Context, id int64, patch entity.BookmarkPatch) error {
	const op = "usecase.BookmarkUseCase.ModifyBookmark"

	if err := uc.bookmarkRepo.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("%s: failed to modify bookmark: %w", op, err)
	}

	return nil
}

func (uc *BookmarkUseCase) RemoveBookmark(ctx context.Context, id int64) error {
	const op = "usecase.BookmarkUseCase.RemoveBookmark"

	if err := uc.bookmarkRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to remove bookmark: %w", op, err)
	}

	return nil
}
