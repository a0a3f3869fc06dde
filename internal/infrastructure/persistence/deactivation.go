package persistence

import (
	"fmt"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ownedTable is one table flipped by a cascading deactivation
type ownedTable struct {
	name   string
	column string
}

// deactivateOwned flips is_active on every active row owned by ownerID, one bulk UPDATE per table
func deactivateOwned(tx *gorm.DB, ownerID uuid.UUID, tables []ownedTable, now time.Time) (*shared.DeactivationReport, error) {
	report := shared.NewDeactivationReport()
	for _, t := range tables {
		result := tx.Table(t.name).
			Where(t.column+" = ? AND is_active = ?", ownerID, true).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_at": now,
			})
		if result.Error != nil {
			return nil, fmt.Errorf("deactivate %s: %w", t.name, result.Error)
		}
		report.Add(t.name, result.RowsAffected)
	}
	return report, nil
}

// deactivateRoot flips the aggregate root row and bumps its version
func deactivateRoot(tx *gorm.DB, table string, id uuid.UUID, now time.Time) (int64, error) {
	result := tx.Table(table).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("deactivate %s: %w", table, result.Error)
	}
	return result.RowsAffected, nil
}

// expireDiscounts flips every active discount of a table whose finish date passed
func expireDiscounts(tx *gorm.DB, table string, now time.Time) (int64, error) {
	result := tx.Table(table).
		Where("is_active = ? AND finish_date < ?", true, now).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("expire %s: %w", table, result.Error)
	}
	return result.RowsAffected, nil
}
