package types

import (
	"math"
	"time"
)

// Building is owned by the buildings service. The engine only reads it to
// derive a replacement value.
type Building struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	BuildingType     *string   `db:"building_type" json:"buildingType,omitempty"`
	Address          *string   `db:"address" json:"address,omitempty"`
	YearBuilt        *int      `db:"year_built" json:"yearBuilt,omitempty"`
	Area             float64   `db:"area" json:"area"`
	CostPerArea      *float64  `db:"cost_per_area" json:"costPerArea,omitempty"`
	ReplacementValue *float64  `db:"replacement_value" json:"replacementValue,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// CurrentReplacementValue returns the stored replacement value, falling back
// to area × cost per area. Zero means the value cannot be determined.
func (b *Building) CurrentReplacementValue() float64 {
	var value float64
	switch {
	case b.ReplacementValue != nil:
		value = *b.ReplacementValue
	case b.CostPerArea != nil:
		value = b.Area * *b.CostPerArea
	}

	// NaN and infinities have no meaningful index.
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
