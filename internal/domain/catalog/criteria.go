package catalog

import (
	"encoding/json"
	"strings"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
)

// CarCriteria is one entry of a showroom's charts: a partial description of a car
// the showroom is willing to stock. Nil fields match anything.
type CarCriteria struct {
	Brand        *Brand        `json:"brand,omitempty"`
	Transmission *Transmission `json:"transmission_type,omitempty"`
	CreationYear *int          `json:"creation_year,omitempty"`
	Mileage      *float64      `json:"miliage,omitempty"`
}

// Matches reports whether the car satisfies every set field
func (c CarCriteria) Matches(car *Car) bool {
	if c.Brand != nil && *c.Brand != car.Brand {
		return false
	}
	if c.Transmission != nil && *c.Transmission != car.Transmission {
		return false
	}
	if c.CreationYear != nil && *c.CreationYear != car.CreationYear {
		return false
	}
	if c.Mileage != nil && *c.Mileage != car.Mileage {
		return false
	}
	return true
}

// IsEmpty reports whether no field is set
func (c CarCriteria) IsEmpty() bool {
	return c.Brand == nil && c.Transmission == nil && c.CreationYear == nil && c.Mileage == nil
}

// ParseCharts decodes a charts document. Both a JSON array and a JSON string
// holding an array are accepted, since older rows stored the array as text.
func ParseCharts(raw string) ([]CarCriteria, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return nil, shared.NewDomainError("INVALID_CHARTS", "Invalid charts document: "+err.Error())
		}
		raw = inner
	}

	var criteria []CarCriteria
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		return nil, shared.NewDomainError("INVALID_CHARTS", "Invalid charts document: "+err.Error())
	}
	for _, c := range criteria {
		if c.Brand != nil && !c.Brand.IsValid() {
			return nil, shared.NewDomainError("INVALID_CHARTS", "Unsupported car brand in charts: "+string(*c.Brand))
		}
		if c.Transmission != nil && !c.Transmission.IsValid() {
			return nil, shared.NewDomainError("INVALID_CHARTS", "Unsupported transmission in charts: "+string(*c.Transmission))
		}
	}
	return criteria, nil
}

// MarshalCharts encodes criteria back into a charts document
func MarshalCharts(criteria []CarCriteria) (string, error) {
	if criteria == nil {
		criteria = []CarCriteria{}
	}
	b, err := json.Marshal(criteria)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
