package blog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error kinds. A domain failure returned by the Service matches exactly one of
// these through errors.Is. Cancelled contexts and driver faults the
// repository does not recognize come back unkinded and are reported as
// internal errors.
var (
	// ErrUnauthenticated indicates no identity could be resolved for the caller
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller lacks ownership or the required role
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness or referential constraint was violated
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates a field constraint was violated
	ErrValidation = errors.New("validation failed")

	// ErrPayloadTooLarge indicates an upload exceeded the size ceiling
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrStorageUnavailable indicates the backing store could not be reached
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Entity specific errors, each wrapping one of the kinds above.
var (
	ErrPostNotFound     = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound  = fmt.Errorf("comment %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrMediaNotFound    = fmt.Errorf("media file %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrSlugTaken         = fmt.Errorf("slug already in use: %w", ErrConflict)
	ErrCategoryNameTaken = fmt.Errorf("category name already in use: %w", ErrConflict)
	ErrPostHasComments   = fmt.Errorf("post still has comments: %w", ErrConflict)
	ErrReferenceViolated = fmt.Errorf("referenced record constraint: %w", ErrConflict)
)

// PostError represents an error related to post operations
type PostError struct {
	PostID uuid.UUID
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// CommentError represents an error related to comment operations
type CommentError struct {
	CommentID uuid.UUID
	Op        string
	Err       error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("comment operation %s failed for comment %s: %v", e.Op, e.CommentID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}

// CategoryError represents an error related to category operations
type CategoryError struct {
	CategoryID uuid.UUID
	Op         string
	Err        error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("category operation %s failed for category %s: %v", e.Op, e.CategoryID, e.Err)
}

func (e *CategoryError) Unwrap() error {
	return e.Err
}

// MediaError represents an error related to media registry operations
type MediaError struct {
	MediaID uuid.UUID
	Op      string
	Err     error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media operation %s failed for media %s: %v", e.Op, e.MediaID, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// FieldError describes a single failed field constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError lists the fields of a request that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Rule))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
