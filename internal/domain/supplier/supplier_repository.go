package supplier

import (
	"context"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierRepository defines persistence for the supplier aggregate and the collections it owns
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindActive returns all active suppliers
	FindActive(ctx context.Context) ([]Supplier, error)

	// MaxActiveNumberOfSales returns the highest sales threshold among active suppliers, 0 if none
	MaxActiveNumberOfSales(ctx context.Context) (int, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, s *Supplier) error

	// SaveOffer creates or updates an offer
	SaveOffer(ctx context.Context, offer *CarOffer) error

	// FindActiveListingsForCar returns active offers of active suppliers for a car,
	// in insertion order
	FindActiveListingsForCar(ctx context.Context, carID uuid.UUID) ([]Listing, error)

	// FindActiveOffer returns the supplier's first active offer for a car and locks its row
	// for the rest of the transaction. Returns shared.ErrNotFound if there is none.
	FindActiveOffer(ctx context.Context, supplierID, carID uuid.UUID) (*CarOffer, error)

	// DeactivateOffer marks an offer sold. Returns shared.ErrConcurrencyConflict if the
	// offer was no longer active.
	DeactivateOffer(ctx context.Context, offerID uuid.UUID) error

	// SaveDiscount creates or updates a discount and its covered cars
	SaveDiscount(ctx context.Context, d *CarDiscount) error

	// FindActiveDiscountsForCar returns the supplier's active discounts covering a car
	// that have not finished at now, in insertion order
	FindActiveDiscountsForCar(ctx context.Context, supplierID, carID uuid.UUID, now time.Time) ([]CarDiscount, error)

	// DeactivateExpiredDiscounts flips every active discount whose finish date is before now
	DeactivateExpiredDiscounts(ctx context.Context, now time.Time) (int64, error)

	// AppendHistory records a sale
	AppendHistory(ctx context.Context, h *History) error

	// CountActiveHistory counts active sales from the supplier to the showroom
	CountActiveHistory(ctx context.Context, supplierID, showroomID uuid.UUID) (int64, error)

	// DeactivateCascade deactivates the supplier with its discounts, offers and history
	DeactivateCascade(ctx context.Context, supplierID uuid.UUID) (*shared.DeactivationReport, error)
}
