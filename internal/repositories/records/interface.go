// Package records persists object records, the durable mapping from
// reference id to current location and encryption key.
package records

import (
	"context"

	"github.com/hippostore/hippo/internal/models"
)

// Repository is the narrow store contract the core requires from the
// persistence layer. Each record is independently consistent; no
// cross-record transactional guarantees are assumed.
type Repository interface {
	// Insert creates the record for a new object.
	Insert(ctx context.Context, r *models.Record) error

	// Update rewrites the record with the given id. Returns
	// common.ErrNotFound when no record with that id exists.
	Update(ctx context.Context, r *models.Record) error

	// Get returns the record for id, or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Record, error)

	// ListLocal returns every record whose location is still Local.
	// Used by recovery scans; reflects all committed writes at call time.
	ListLocal(ctx context.Context) ([]*models.Record, error)

	// Count returns the total number of records and how many of them
	// are still Local.
	Count(ctx context.Context) (all int, local int, err error)
}
