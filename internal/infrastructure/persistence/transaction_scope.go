package persistence

import (
	"context"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"gorm.io/gorm"
)

// GormTransactionScope implements engine.TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction, rolling back when it returns an error
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos engine.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) CarRepo() catalog.CarRepository {
	return NewGormCarRepository(r.tx)
}

func (r *gormTransactionalRepositories) SupplierRepo() supplier.SupplierRepository {
	return NewGormSupplierRepository(r.tx)
}

func (r *gormTransactionalRepositories) ShowroomRepo() showroom.ShowroomRepository {
	return NewGormShowroomRepository(r.tx)
}

func (r *gormTransactionalRepositories) CustomerRepo() customer.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

var (
	_ engine.TransactionScope          = (*GormTransactionScope)(nil)
	_ engine.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
