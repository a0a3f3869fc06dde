package persistence

import (
	"context"
	"errors"

	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCarRepository implements CarRepository using GORM
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

// FindByID finds a car by its ID
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Car, error) {
	var car catalog.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

// FindByIDs finds cars by IDs
func (r *GormCarRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Car, error) {
	if len(ids) == 0 {
		return []catalog.Car{}, nil
	}
	var cars []catalog.Car
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

// FindFirstMatching returns the oldest active car matching every set field of the criteria
func (r *GormCarRepository) FindFirstMatching(ctx context.Context, criteria catalog.CarCriteria) (*catalog.Car, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if criteria.Brand != nil {
		query = query.Where("brand = ?", string(*criteria.Brand))
	}
	if criteria.Transmission != nil {
		query = query.Where("transmission = ?", string(*criteria.Transmission))
	}
	if criteria.CreationYear != nil {
		query = query.Where("creation_year = ?", *criteria.CreationYear)
	}
	if criteria.Mileage != nil {
		query = query.Where("mileage = ?", *criteria.Mileage)
	}

	var car catalog.Car
	if err := query.Order("created_at ASC, id ASC").First(&car).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

// FindActive returns all active cars ordered by creation time
func (r *GormCarRepository) FindActive(ctx context.Context) ([]catalog.Car, error) {
	var cars []catalog.Car
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

// Save creates or updates a car
func (r *GormCarRepository) Save(ctx context.Context, car *catalog.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

// Ensure GormCarRepository implements CarRepository
var _ catalog.CarRepository = (*GormCarRepository)(nil)
