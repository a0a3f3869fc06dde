package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	var s supplier.Supplier
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindActive returns all active suppliers
func (r *GormSupplierRepository) FindActive(ctx context.Context) ([]supplier.Supplier, error) {
	var suppliers []supplier.Supplier
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// MaxActiveNumberOfSales returns the highest sales threshold among active suppliers
func (r *GormSupplierRepository) MaxActiveNumberOfSales(ctx context.Context) (int, error) {
	var maxSales int
	if err := r.db.WithContext(ctx).
		Model(&supplier.Supplier{}).
		Where("is_active = ?", true).
		Select("COALESCE(MAX(number_of_sales), 0)").
		Scan(&maxSales).Error; err != nil {
		return 0, err
	}
	return maxSales, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, s *supplier.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// SaveOffer creates or updates an offer
func (r *GormSupplierRepository) SaveOffer(ctx context.Context, offer *supplier.CarOffer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

// FindActiveListingsForCar returns active offers of active suppliers for a car
func (r *GormSupplierRepository) FindActiveListingsForCar(ctx context.Context, carID uuid.UUID) ([]supplier.Listing, error) {
	var offers []supplier.CarOffer
	if err := r.db.WithContext(ctx).
		Select("supplier_car_offers.*").
		Joins("JOIN suppliers ON suppliers.id = supplier_car_offers.supplier_id").
		Where("supplier_car_offers.car_id = ? AND supplier_car_offers.is_active = ? AND suppliers.is_active = ?", carID, true, true).
		Order("supplier_car_offers.created_at ASC, supplier_car_offers.id ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return []supplier.Listing{}, nil
	}

	supplierIDs := make([]uuid.UUID, 0, len(offers))
	seen := make(map[uuid.UUID]bool, len(offers))
	for _, o := range offers {
		if !seen[o.SupplierID] {
			seen[o.SupplierID] = true
			supplierIDs = append(supplierIDs, o.SupplierID)
		}
	}
	var suppliers []supplier.Supplier
	if err := r.db.WithContext(ctx).Where("id IN ?", supplierIDs).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]supplier.Supplier, len(suppliers))
	for _, s := range suppliers {
		byID[s.ID] = s
	}

	listings := make([]supplier.Listing, 0, len(offers))
	for _, o := range offers {
		s, ok := byID[o.SupplierID]
		if !ok {
			continue
		}
		listings = append(listings, supplier.Listing{Offer: o, Supplier: s})
	}
	return listings, nil
}

// FindActiveOffer returns the supplier's oldest active offer for a car, locked for update
func (r *GormSupplierRepository) FindActiveOffer(ctx context.Context, supplierID, carID uuid.UUID) (*supplier.CarOffer, error) {
	var offer supplier.CarOffer
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("supplier_id = ? AND car_id = ? AND is_active = ?", supplierID, carID, true).
		Order("created_at ASC, id ASC").
		First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// DeactivateOffer marks an active offer sold
func (r *GormSupplierRepository) DeactivateOffer(ctx context.Context, offerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&supplier.CarOffer{}).
		Where("id = ? AND is_active = ?", offerID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveDiscount creates or updates a discount and rewrites its covered cars
func (r *GormSupplierRepository) SaveDiscount(ctx context.Context, d *supplier.CarDiscount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		if err := tx.Where("discount_id = ?", d.ID).Delete(&supplier.DiscountCar{}).Error; err != nil {
			return err
		}
		if len(d.CarIDs) == 0 {
			return nil
		}
		links := make([]supplier.DiscountCar, 0, len(d.CarIDs))
		for _, carID := range d.CarIDs {
			links = append(links, supplier.DiscountCar{DiscountID: d.ID, CarID: carID})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}

// FindActiveDiscountsForCar returns the supplier's active discounts covering a car.
// A discount past its finish date is left out even before the sweeper flips it.
func (r *GormSupplierRepository) FindActiveDiscountsForCar(ctx context.Context, supplierID, carID uuid.UUID, now time.Time) ([]supplier.CarDiscount, error) {
	covering := r.db.Model(&supplier.DiscountCar{}).Select("discount_id").Where("car_id = ?", carID)

	var discounts []supplier.CarDiscount
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND is_active = ? AND finish_date >= ? AND id IN (?)", supplierID, true, now, covering).
		Order("created_at ASC, id ASC").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return []supplier.CarDiscount{}, nil
	}

	ids := make([]uuid.UUID, len(discounts))
	for i := range discounts {
		ids[i] = discounts[i].ID
	}
	var links []supplier.DiscountCar
	if err := r.db.WithContext(ctx).Where("discount_id IN ?", ids).Find(&links).Error; err != nil {
		return nil, err
	}
	cars := make(map[uuid.UUID][]uuid.UUID, len(discounts))
	for _, l := range links {
		cars[l.DiscountID] = append(cars[l.DiscountID], l.CarID)
	}
	for i := range discounts {
		discounts[i].CarIDs = cars[discounts[i].ID]
	}
	return discounts, nil
}

// DeactivateExpiredDiscounts flips every active discount whose finish date is before now
func (r *GormSupplierRepository) DeactivateExpiredDiscounts(ctx context.Context, now time.Time) (int64, error) {
	return expireDiscounts(r.db.WithContext(ctx), supplier.CarDiscount{}.TableName(), now)
}

// AppendHistory records a sale
func (r *GormSupplierRepository) AppendHistory(ctx context.Context, h *supplier.History) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// CountActiveHistory counts active sales from the supplier to the showroom
func (r *GormSupplierRepository) CountActiveHistory(ctx context.Context, supplierID, showroomID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&supplier.History{}).
		Where("supplier_id = ? AND showroom_id = ? AND is_active = ?", supplierID, showroomID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeactivateCascade deactivates the supplier with its discounts, offers and history
func (r *GormSupplierRepository) DeactivateCascade(ctx context.Context, supplierID uuid.UUID) (*shared.DeactivationReport, error) {
	var report *shared.DeactivationReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		rows, err := deactivateRoot(tx, supplier.Supplier{}.TableName(), supplierID, now)
		if err != nil {
			return err
		}
		report, err = deactivateOwned(tx, supplierID, []ownedTable{
			{name: supplier.CarDiscount{}.TableName(), column: "supplier_id"},
			{name: supplier.CarOffer{}.TableName(), column: "supplier_id"},
			{name: supplier.History{}.TableName(), column: "supplier_id"},
		}, now)
		if err != nil {
			return err
		}
		report.Add(supplier.Supplier{}.TableName(), rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ supplier.SupplierRepository = (*GormSupplierRepository)(nil)
