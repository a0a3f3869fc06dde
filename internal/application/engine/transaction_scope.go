package engine

import (
	"context"

	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
)

// TransactionScope provides transactional access to the engine's repositories.
// Every repository obtained inside Execute shares one database transaction, committed
// when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the aggregate repositories bound to the current transaction.
//
// Aggregate boundaries:
//   - SupplierRepo owns offers, supplier discounts and supplier history.
//   - ShowroomRepo owns showroom cars, appropriate cars, current suppliers, showroom
//     discounts and showroom history.
//   - CustomerRepo owns offers and customer history.
//
// Cars are reference data and are never locked.
type TransactionalRepositories interface {
	CarRepo() catalog.CarRepository
	SupplierRepo() supplier.SupplierRepository
	ShowroomRepo() showroom.ShowroomRepository
	CustomerRepo() customer.CustomerRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Used by tests that stub the repositories.
type NoOpTransactionScope struct {
	carRepo      catalog.CarRepository
	supplierRepo supplier.SupplierRepository
	showroomRepo showroom.ShowroomRepository
	customerRepo customer.CustomerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	carRepo catalog.CarRepository,
	supplierRepo supplier.SupplierRepository,
	showroomRepo showroom.ShowroomRepository,
	customerRepo customer.CustomerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		carRepo:      carRepo,
		supplierRepo: supplierRepo,
		showroomRepo: showroomRepo,
		customerRepo: customerRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CarRepo returns the car repository
func (s *NoOpTransactionScope) CarRepo() catalog.CarRepository {
	return s.carRepo
}

// SupplierRepo returns the supplier repository
func (s *NoOpTransactionScope) SupplierRepo() supplier.SupplierRepository {
	return s.supplierRepo
}

// ShowroomRepo returns the showroom repository
func (s *NoOpTransactionScope) ShowroomRepo() showroom.ShowroomRepository {
	return s.showroomRepo
}

// CustomerRepo returns the customer repository
func (s *NoOpTransactionScope) CustomerRepo() customer.CustomerRepository {
	return s.customerRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
