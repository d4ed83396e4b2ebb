// Package files is the persisted store of session files. Concurrency control
// is last-write-wins per row; the store does not implement optimistic locking
// or version vectors.
package files

import (
    "context"
    "errors"

    "livepair/editor/internal/types"
)

var ErrNotFound = errors.New("file not found")

// Partial is a partial update. Pointer fields distinguish "not provided"
// from "set to empty".
type Partial struct {
    Filename *string
    Content  *string
    Language *string
}

type Store interface {
    // List returns a session's files ordered by creation time, ties broken
    // by store-assigned ordering.
    List(ctx context.Context, sessionCode string) ([]types.FileRecord, error)
    Get(ctx context.Context, id string) (types.FileRecord, error)
    Create(ctx context.Context, sessionCode, filename, language string) (types.FileRecord, error)
    Update(ctx context.Context, id string, p Partial) (types.FileRecord, error)
    Delete(ctx context.Context, id string) error
}
