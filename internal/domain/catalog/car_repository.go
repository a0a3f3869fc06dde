package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CarRepository defines the interface for catalog persistence
type CarRepository interface {
	// FindByID finds a car by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)

	// FindByIDs finds cars by IDs, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Car, error)

	// FindFirstMatching returns the oldest active car matching the criteria, or shared.ErrNotFound
	FindFirstMatching(ctx context.Context, criteria CarCriteria) (*Car, error)

	// FindActive returns all active cars ordered by creation time
	FindActive(ctx context.Context) ([]Car, error)

	// Save creates or updates a car
	Save(ctx context.Context, car *Car) error
}
