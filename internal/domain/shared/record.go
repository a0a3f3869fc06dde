package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit columns shared by every table.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// Touch marks the row as modified.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// ActiveFlag is the is_active column. Rows are never deleted, only flipped off.
// It has no gorm default: a default would turn an explicit false into true on insert.
type ActiveFlag struct {
	IsActive bool `gorm:"not null;index"`
}

func Activated() ActiveFlag { return ActiveFlag{IsActive: true} }

func (a *ActiveFlag) Active() bool { return a.IsActive }

func (a *ActiveFlag) Deactivate() { a.IsActive = false }
