package persistence

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShowroomRepository implements ShowroomRepository using GORM
type GormShowroomRepository struct {
	db *gorm.DB
}

// NewGormShowroomRepository creates a new GormShowroomRepository
func NewGormShowroomRepository(db *gorm.DB) *GormShowroomRepository {
	return &GormShowroomRepository{db: db}
}

// FindByID loads a showroom with its appropriate cars and current suppliers
func (r *GormShowroomRepository) FindByID(ctx context.Context, id uuid.UUID) (*showroom.Showroom, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads a showroom and holds its row lock until the transaction ends
func (r *GormShowroomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*showroom.Showroom, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormShowroomRepository) find(ctx context.Context, query *gorm.DB, id uuid.UUID) (*showroom.Showroom, error) {
	var s showroom.Showroom
	if err := query.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var appropriate []showroom.AppropriateCar
	if err := r.db.WithContext(ctx).
		Where("showroom_id = ?", id).
		Order("position ASC").
		Find(&appropriate).Error; err != nil {
		return nil, err
	}
	s.AppropriateCarIDs = make([]uuid.UUID, len(appropriate))
	for i, a := range appropriate {
		s.AppropriateCarIDs[i] = a.CarID
	}

	var current []showroom.CurrentSupplier
	if err := r.db.WithContext(ctx).Where("showroom_id = ?", id).Find(&current).Error; err != nil {
		return nil, err
	}
	s.CurrentSuppliers = make(map[uuid.UUID]uuid.UUID, len(current))
	for _, c := range current {
		s.CurrentSuppliers[c.CarID] = c.SupplierID
	}

	return &s, nil
}

// FindActiveIDs returns the IDs of all active showrooms
func (r *GormShowroomRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&showroom.Showroom{}).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates a showroom or overwrites all its columns
func (r *GormShowroomRepository) Save(ctx context.Context, s *showroom.Showroom) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// SaveWithLock persists balance and version. The write only lands if the stored version is
// the one the aggregate was loaded with.
func (r *GormShowroomRepository) SaveWithLock(ctx context.Context, s *showroom.Showroom) error {
	result := r.db.WithContext(ctx).
		Model(&showroom.Showroom{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"balance":    s.Balance,
			"version":    s.Version,
			"updated_at": s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ReplaceAppropriateCars rewrites the showroom's ordered wish list
func (r *GormShowroomRepository) ReplaceAppropriateCars(ctx context.Context, showroomID uuid.UUID, carIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("showroom_id = ?", showroomID).Delete(&showroom.AppropriateCar{}).Error; err != nil {
			return err
		}
		rows := make([]showroom.AppropriateCar, 0, len(carIDs))
		seen := make(map[uuid.UUID]bool, len(carIDs))
		for _, carID := range carIDs {
			if seen[carID] {
				continue
			}
			seen[carID] = true
			rows = append(rows, showroom.AppropriateCar{ShowroomID: showroomID, CarID: carID, Position: len(rows)})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// ReplaceCurrentSuppliers rewrites the car to supplier assignments
func (r *GormShowroomRepository) ReplaceCurrentSuppliers(ctx context.Context, showroomID uuid.UUID, assignments map[uuid.UUID]uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("showroom_id = ?", showroomID).Delete(&showroom.CurrentSupplier{}).Error; err != nil {
			return err
		}
		if len(assignments) == 0 {
			return nil
		}
		rows := make([]showroom.CurrentSupplier, 0, len(assignments))
		for carID, supplierID := range assignments {
			rows = append(rows, showroom.CurrentSupplier{ShowroomID: showroomID, CarID: carID, SupplierID: supplierID})
		}
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].CarID.String() < rows[j].CarID.String()
		})
		return tx.Create(&rows).Error
	})
}

// SaveCar creates or updates a unit of inventory
func (r *GormShowroomRepository) SaveCar(ctx context.Context, car *showroom.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

// FindCheapestActiveCar returns the cheapest unsold unit of a car across active showrooms
func (r *GormShowroomRepository) FindCheapestActiveCar(ctx context.Context, carID uuid.UUID) (*showroom.Car, error) {
	activeShowrooms := r.db.Model(&showroom.Showroom{}).Select("id").Where("is_active = ?", true)
	return r.findCheapest(r.db.WithContext(ctx).
		Where("car_id = ? AND is_active = ? AND showroom_id IN (?)", carID, true, activeShowrooms))
}

func (r *GormShowroomRepository) findCheapest(query *gorm.DB) (*showroom.Car, error) {
	var car showroom.Car
	if err := query.Order("price ASC, created_at ASC, id ASC").First(&car).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

// SellCar assigns an active unit to a customer and deactivates it
func (r *GormShowroomRepository) SellCar(ctx context.Context, showroomCarID, customerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&showroom.Car{}).
		Where("id = ? AND is_active = ?", showroomCarID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"customer_id": customerID,
			"updated_at":  time.Now(),
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
func (r *GormShowroomRepository) SaveDiscount(ctx context.Context, d *showroom.CarDiscount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		if err := tx.Where("discount_id = ?", d.ID).Delete(&showroom.DiscountCar{}).Error; err != nil {
			return err
		}
		if len(d.CarIDs) == 0 {
			return nil
		}
		links := make([]showroom.DiscountCar, 0, len(d.CarIDs))
		for _, carID := range d.CarIDs {
			links = append(links, showroom.DiscountCar{DiscountID: d.ID, CarID: carID})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}

// FindActiveDiscountsForCar returns the showroom's active discounts covering a car.
// A discount past its finish date is left out even before the sweeper flips it.
func (r *GormShowroomRepository) FindActiveDiscountsForCar(ctx context.Context, showroomID, carID uuid.UUID, now time.Time) ([]showroom.CarDiscount, error) {
	covering := r.db.Model(&showroom.DiscountCar{}).Select("discount_id").Where("car_id = ?", carID)

	var discounts []showroom.CarDiscount
	if err := r.db.WithContext(ctx).
		Where("showroom_id = ? AND is_active = ? AND finish_date >= ? AND id IN (?)", showroomID, true, now, covering).
		Order("created_at ASC, id ASC").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return []showroom.CarDiscount{}, nil
	}

	ids := make([]uuid.UUID, len(discounts))
	for i := range discounts {
		ids[i] = discounts[i].ID
	}
	var links []showroom.DiscountCar
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
func (r *GormShowroomRepository) DeactivateExpiredDiscounts(ctx context.Context, now time.Time) (int64, error) {
	return expireDiscounts(r.db.WithContext(ctx), showroom.CarDiscount{}.TableName(), now)
}

// AppendHistory records a sale
func (r *GormShowroomRepository) AppendHistory(ctx context.Context, h *showroom.History) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// historyCount is a grouped count row
type historyCount struct {
	CarID uuid.UUID
	Total int64
}

// CountActiveHistoryByCar counts the showroom's active sales per car
func (r *GormShowroomRepository) CountActiveHistoryByCar(ctx context.Context, showroomID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []historyCount
	if err := r.db.WithContext(ctx).
		Model(&showroom.History{}).
		Select("car_id, COUNT(*) AS total").
		Where("showroom_id = ? AND is_active = ?", showroomID, true).
		Group("car_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CarID] = row.Total
	}
	return counts, nil
}

// CountActiveHistoryWithCustomer counts active sales from the showroom to the customer
func (r *GormShowroomRepository) CountActiveHistoryWithCustomer(ctx context.Context, showroomID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&showroom.History{}).
		Where("showroom_id = ? AND customer_id = ? AND is_active = ?", showroomID, customerID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeactivateCascade deactivates the showroom with its discounts, cars and history
func (r *GormShowroomRepository) DeactivateCascade(ctx context.Context, showroomID uuid.UUID) (*shared.DeactivationReport, error) {
	var report *shared.DeactivationReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		rows, err := deactivateRoot(tx, showroom.Showroom{}.TableName(), showroomID, now)
		if err != nil {
			return err
		}
		report, err = deactivateOwned(tx, showroomID, []ownedTable{
			{name: showroom.CarDiscount{}.TableName(), column: "showroom_id"},
			{name: showroom.Car{}.TableName(), column: "showroom_id"},
			{name: showroom.History{}.TableName(), column: "showroom_id"},
		}, now)
		if err != nil {
			return err
		}
		report.Add(showroom.Showroom{}.TableName(), rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Ensure GormShowroomRepository implements ShowroomRepository
var _ showroom.ShowroomRepository = (*GormShowroomRepository)(nil)
