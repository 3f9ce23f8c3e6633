package types

import "time"

type ElementCategory string

const (
	ElementCategoryFoundations          ElementCategory = "foundations"
	ElementCategorySuperstructure       ElementCategory = "superstructure"
	ElementCategoryExteriorEnclosure    ElementCategory = "exterior_enclosure"
	ElementCategoryRoofing              ElementCategory = "roofing"
	ElementCategoryInteriorConstruction ElementCategory = "interior_construction"
	ElementCategoryStairs               ElementCategory = "stairs"
	ElementCategoryInteriorFinishes     ElementCategory = "interior_finishes"
	ElementCategoryConveying            ElementCategory = "conveying"
	ElementCategoryPlumbing             ElementCategory = "plumbing"
	ElementCategoryHVAC                 ElementCategory = "hvac"
	ElementCategoryFireProtection       ElementCategory = "fire_protection"
	ElementCategoryElectrical           ElementCategory = "electrical"
	ElementCategoryEquipment            ElementCategory = "equipment"
	ElementCategoryFurnishings          ElementCategory = "furnishings"
	ElementCategorySpecialConstruction  ElementCategory = "special_construction"
	ElementCategorySitework             ElementCategory = "sitework"
)

// Element is a Uniformat II catalog entry. BaseReplacementCostFactor is the
// share of the building replacement value the element accounts for.
type Element struct {
	ID                        string          `db:"id" json:"id"`
	Code                      string          `db:"code" json:"code"`
	Name                      string          `db:"name" json:"name"`
	MajorGroup                string          `db:"major_group" json:"majorGroup"`
	GroupElement              string          `db:"group_element" json:"groupElement"`
	Category                  ElementCategory `db:"category" json:"category"`
	BaseReplacementCostFactor float64         `db:"base_replacement_cost_factor" json:"baseReplacementCostFactor"`
	UsefulLifeYears           int             `db:"useful_life_years" json:"usefulLifeYears"`
	CreatedAt                 time.Time       `db:"created_at" json:"-"`
}
