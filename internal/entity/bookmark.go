// Package entity defines the entities and errors used in the application.
// It includes the Bookmark struct, the partial update applied to it, and the
// domain errors shared by the use case and delivery layers.
package entity

import "errors"

var (
	// ErrBookmarkNotFound is returned when no bookmark exists for the requested id.
	ErrBookmarkNotFound = errors.New("bookmark not found")
	// ErrConstraintViolation is returned when the store rejects a row because
	// it breaks a table constraint.
	ErrConstraintViolation = errors.New("constraint violation")
)

// Rating bounds, inclusive.
const (
	MinRating = 0
	MaxRating = 5
)

// Bookmark represents a stored link.
type Bookmark struct {
	ID          int64  // ID is assigned by the store on insert and never changes.
	Title       string // Title is the human readable name, never empty.
	URL         string // URL is an absolute http(s) address, never empty.
	Description string // Description is optional free text.
	Rating      int    // Rating is within [MinRating, MaxRating].
}

// BookmarkPatch holds the fields of a partial update. A nil field is left untouched.
type BookmarkPatch struct {
	Title       *string
	URL         *string
	Description *string
	Rating      *int
}

// IsEmpty reports whether the patch carries no field to change.
func (p BookmarkPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil && p.Rating == nil
}

// Apply returns a copy of b with the patch fields written over it.
func (p BookmarkPatch) Apply(b Bookmark) Bookmark {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}

	return b
}
