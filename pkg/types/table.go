package types

import "errors"

// Count is one row of an entity's aggregate count query: the identity of a
// parent row and the number of associated rows.
type Count struct {
	ID    int64 `json:"id"`
	Count int64 `json:"count"`
}

// Entity operation errors.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidID           = errors.New("invalid entity ID")
	ErrInvalidData         = errors.New("invalid entity data")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrCreateReread        = errors.New("failed to create entity")
)

// Field validation errors.
var (
	ErrInvalidURI    = errors.New("uri is required")
	ErrInvalidTag    = errors.New("tag must not be empty")
	ErrInvalidColor  = errors.New("unknown tag color")
	ErrInvalidFilter = errors.New("invalid filter")
)

// Workspace lifecycle errors.
var (
	ErrWorkspaceClosed = errors.New("workspace is closed")
	ErrEmptySnapshot   = errors.New("workspace snapshot is empty")
)
