package showroom

import (
	"context"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
)

// ShowroomRepository defines persistence for the showroom aggregate and the collections it owns
type ShowroomRepository interface {
	// FindByID loads a showroom with its appropriate cars and current suppliers
	FindByID(ctx context.Context, id uuid.UUID) (*Showroom, error)

	// FindByIDForUpdate is FindByID holding a row lock on the showroom until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Showroom, error)

	// FindActiveIDs returns the IDs of all active showrooms
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)

	// Save creates a showroom or overwrites all its columns
	Save(ctx context.Context, s *Showroom) error

	// SaveWithLock persists balance and version with an optimistic version check
	SaveWithLock(ctx context.Context, s *Showroom) error

	// ReplaceAppropriateCars rewrites the showroom's ordered wish list
	ReplaceAppropriateCars(ctx context.Context, showroomID uuid.UUID, carIDs []uuid.UUID) error

	// ReplaceCurrentSuppliers rewrites the car to supplier assignments
	ReplaceCurrentSuppliers(ctx context.Context, showroomID uuid.UUID, assignments map[uuid.UUID]uuid.UUID) error

	// SaveCar creates or updates a unit of inventory
	SaveCar(ctx context.Context, car *Car) error

	// FindCheapestActiveCar returns the cheapest unsold unit of a car across active showrooms,
	// oldest first on equal price
	FindCheapestActiveCar(ctx context.Context, carID uuid.UUID) (*Car, error)

	// SellCar assigns an active unit to a customer and deactivates it. Returns
	// shared.ErrConcurrencyConflict if the unit was already sold.
	SellCar(ctx context.Context, showroomCarID, customerID uuid.UUID) error

	// SaveDiscount creates or updates a discount and its covered cars
	SaveDiscount(ctx context.Context, d *CarDiscount) error

	// FindActiveDiscountsForCar returns the showroom's active discounts covering a car
	// that have not finished at now, in insertion order
	FindActiveDiscountsForCar(ctx context.Context, showroomID, carID uuid.UUID, now time.Time) ([]CarDiscount, error)

	// DeactivateExpiredDiscounts flips every active discount whose finish date is before now
	DeactivateExpiredDiscounts(ctx context.Context, now time.Time) (int64, error)

	// AppendHistory records a sale
	AppendHistory(ctx context.Context, h *History) error

	// CountActiveHistoryByCar counts the showroom's active sales per car
	CountActiveHistoryByCar(ctx context.Context, showroomID uuid.UUID) (map[uuid.UUID]int64, error)

	// CountActiveHistoryWithCustomer counts active sales from the showroom to the customer
	CountActiveHistoryWithCustomer(ctx context.Context, showroomID, customerID uuid.UUID) (int64, error)

	// DeactivateCascade deactivates the showroom with its discounts, cars and history
	DeactivateCascade(ctx context.Context, showroomID uuid.UUID) (*shared.DeactivationReport, error)
}
