package shared

// BaseAggregateRoot is embedded by showrooms, suppliers and customers.
// Version backs optimistic locking in the repositories; the pending events
// are drained by the engine after the owning transaction commits.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`

	pending []DomainEvent `gorm:"-"`
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// IncrementVersion is called by every mutating method. It also touches UpdatedAt.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the pending events without draining them.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// PullDomainEvents drains the pending events.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	out := a.pending
	a.pending = nil
	return out
}
