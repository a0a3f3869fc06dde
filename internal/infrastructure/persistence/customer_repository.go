package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a customer and holds its row lock until the transaction ends
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormCustomerRepository) find(query *gorm.DB, id uuid.UUID) (*customer.Customer, error) {
	var c customer.Customer
	if err := query.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Save creates a customer or overwrites all its columns
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// SaveWithLock persists balance and version with an optimistic version check
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, c *customer.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&customer.Customer{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(map[string]interface{}{
			"balance":    c.Balance,
			"version":    c.Version,
			"updated_at": c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveOffer creates or updates an offer
func (r *GormCustomerRepository) SaveOffer(ctx context.Context, o *customer.Offer) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// FindOfferByID finds an offer by its ID
func (r *GormCustomerRepository) FindOfferByID(ctx context.Context, id uuid.UUID) (*customer.Offer, error) {
	var o customer.Offer
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindActiveOfferIDs returns the IDs of active offers of active customers
func (r *GormCustomerRepository) FindActiveOfferIDs(ctx context.Context) ([]uuid.UUID, error) {
	activeCustomers := r.db.Model(&customer.Customer{}).Select("id").Where("is_active = ?", true)

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&customer.Offer{}).
		Where("is_active = ? AND customer_id IN (?)", true, activeCustomers).
		Order("created_at ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AppendHistory records a purchase
func (r *GormCustomerRepository) AppendHistory(ctx context.Context, h *customer.History) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// FindHistory returns a customer's purchases, oldest first
func (r *GormCustomerRepository) FindHistory(ctx context.Context, customerID uuid.UUID) ([]customer.History, error) {
	var history []customer.History
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC, id ASC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// DeactivateCascade deactivates the customer with its offers and history
func (r *GormCustomerRepository) DeactivateCascade(ctx context.Context, customerID uuid.UUID) (*shared.DeactivationReport, error) {
	var report *shared.DeactivationReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		rows, err := deactivateRoot(tx, customer.Customer{}.TableName(), customerID, now)
		if err != nil {
			return err
		}
		report, err = deactivateOwned(tx, customerID, []ownedTable{
			{name: customer.Offer{}.TableName(), column: "customer_id"},
			{name: customer.History{}.TableName(), column: "customer_id"},
		}, now)
		if err != nil {
			return err
		}
		report.Add(customer.Customer{}.TableName(), rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ customer.CustomerRepository = (*GormCustomerRepository)(nil)
