package customer

import (
	"net/mail"
	"strings"

	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Customer buys cars from showrooms through standing offers
type Customer struct {
	shared.BaseAggregateRoot
	shared.ActiveFlag
	Name    string          `gorm:"type:varchar(100);not null"`
	Email   string          `gorm:"type:varchar(254);not null;uniqueIndex"`
	Balance decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer
func NewCustomer(name, email string, balance decimal.Decimal) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	if balance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Balance cannot be negative")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ActiveFlag:        shared.Activated(),
		Name:              name,
		Email:             strings.ToLower(email),
		Balance:           balance,
	}, nil
}

// CanAfford reports whether a price is strictly below the balance
func (c *Customer) CanAfford(price decimal.Decimal) bool {
	return pricing.Affordable(price, c.Balance)
}

// Debit withdraws the price of a purchase from the balance
func (c *Customer) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Debit amount cannot be negative")
	}
	if !c.CanAfford(amount) {
		return shared.ErrInsufficientBalance
	}
	c.Balance = c.Balance.Sub(amount)
	c.IncrementVersion()
	return nil
}

// MarkDeactivated records the customer's cascading deactivation
func (c *Customer) MarkDeactivated() {
	c.Deactivate()
	c.IncrementVersion()
	c.AddDomainEvent(NewCustomerDeactivatedEvent(c))
}
