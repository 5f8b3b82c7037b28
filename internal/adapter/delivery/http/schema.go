package http

import (
	"github.com/vadimbarashkov/bookmarks/internal/entity"
	"github.com/vadimbarashkov/bookmarks/pkg/sanitize"
)

// createBookmarkRequest represents the body of a request to create a bookmark.
// Rating is decoded loosely so that numeric strings can be coerced.
type createBookmarkRequest struct {
	Title       string `json:"title" validate:"required"`
	URL         string `json:"url" validate:"required,http_url"`
	Description string `json:"description"`
	Rating      any    `json:"rating" validate:"required,rating"`
}

func (req *createBookmarkRequest) normalize() {
	req.Rating = blankToNil(req.Rating)
}

// toEntity must only be called once the request passed validation.
func (req *createBookmarkRequest) toEntity() entity.Bookmark {
	rating, _ := parseRating(req.Rating)

	return entity.Bookmark{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Rating:      rating,
	}
}

// patchBookmarkRequest represents the body of a partial update. Empty strings
// and nulls are treated as absent fields.
type patchBookmarkRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url" validate:"omitempty,http_url"`
	Description string `json:"description"`
	Rating      any    `json:"rating" validate:"omitempty,rating"`
}

func (req *patchBookmarkRequest) normalize() {
	req.Rating = blankToNil(req.Rating)
}

// toPatch must only be called once the request passed validation.
func (req *patchBookmarkRequest) toPatch() entity.BookmarkPatch {
	var patch entity.BookmarkPatch

	if req.Title != "" {
		patch.Title = &req.Title
	}
	if req.URL != "" {
		patch.URL = &req.URL
	}
	if req.Description != "" {
		patch.Description = &req.Description
	}
	if req.Rating != nil {
		if rating, ok := parseRating(req.Rating); ok {
			patch.Rating = &rating
		}
	}

	return patch
}

// bookmarkResponse represents a bookmark as sent to clients.
type bookmarkResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
}

// toBookmarkResponse converts an entity.Bookmark to a bookmarkResponse with
// its text fields sanitized by p.
func toBookmarkResponse(b *entity.Bookmark, p *sanitize.Policy) bookmarkResponse {
	return bookmarkResponse{
		ID:          b.ID,
		Title:       p.Sanitize(b.Title),
		URL:         p.Sanitize(b.URL),
		Description: p.Sanitize(b.Description),
		Rating:      b.Rating,
	}
}

func toBookmarkResponses(bookmarks []entity.Bookmark, p *sanitize.Policy) []bookmarkResponse {
	resp := make([]bookmarkResponse, 0, len(bookmarks))
	for i := range bookmarks {
		resp = append(resp, toBookmarkResponse(&bookmarks[i], p))
	}
	return resp
}
