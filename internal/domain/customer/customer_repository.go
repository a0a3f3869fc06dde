package customer

import (
	"context"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines persistence for the customer aggregate, its offers and its history
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDForUpdate is FindByID holding a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Customer, error)

	// Save creates a customer or overwrites all its columns
	Save(ctx context.Context, c *Customer) error

	// SaveWithLock persists balance and version with an optimistic version check
	SaveWithLock(ctx context.Context, c *Customer) error

	// SaveOffer creates or updates an offer
	SaveOffer(ctx context.Context, o *Offer) error

	// FindOfferByID finds an offer by its ID
	FindOfferByID(ctx context.Context, id uuid.UUID) (*Offer, error)

	// FindActiveOfferIDs returns the IDs of active offers of active customers
	FindActiveOfferIDs(ctx context.Context) ([]uuid.UUID, error)

	// AppendHistory records a purchase
	AppendHistory(ctx context.Context, h *History) error

	// FindHistory returns a customer's purchases, oldest first
	FindHistory(ctx context.Context, customerID uuid.UUID) ([]History, error)

	// DeactivateCascade deactivates the customer with its offers and history
	DeactivateCascade(ctx context.Context, customerID uuid.UUID) (*shared.DeactivationReport, error)
}
