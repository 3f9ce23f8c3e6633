package seed

import (
	"context"
	"fmt"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"

	"github.com/sirupsen/logrus"
)

type ElementStore interface {
	AllElements(ctx context.Context) ([]*types.Element, error)
	UpsertElement(ctx context.Context, element *types.Element) error
	DeleteElement(ctx context.Context, id string) error
}

// majorGroupShares is the portion of a building's replacement value carried
// by each Uniformat II major group. A group's share is split evenly across
// its elements.
var majorGroupShares = map[string]float64{
	"A": 0.08,
	"B": 0.25,
	"C": 0.20,
	"D": 0.30,
	"E": 0.10,
	"F": 0.05,
	"G": 0.02,
}

var majorGroupNames = map[string]string{
	"A": "Substructure",
	"B": "Shell",
	"C": "Interiors",
	"D": "Services",
	"E": "Equipment & Furnishings",
	"F": "Special Construction",
	"G": "Building Sitework",
}

// uniformatElements is the source of truth for the element catalog. IDs are
// fixed; generate new ones with `fcaengine nanoid`.
var uniformatElements = []types.Element{
		{ID: "nMRT41TztKSneyej962fXInc4XhrD7Qh", Code: "A1010", Name: "Standard Foundations", GroupElement: "A10 - Foundations", Category: types.ElementCategoryFoundations, UsefulLifeYears: 75},
		{ID: "6Ot5ie0KjcTkSmELUirZBmOCcsQKUEIR", Code: "A1020", Name: "Special Foundations", GroupElement: "A10 - Foundations", Category: types.ElementCategoryFoundations, UsefulLifeYears: 75},
		{ID: "NSRvE5nLG5b6mwYAh4PvxxoGVAiS8jxy", Code: "A2010", Name: "Basement Excavation", GroupElement: "A20 - Basement Construction", Category: types.ElementCategoryFoundations, UsefulLifeYears: 75},
		{ID: "dIYFl7TB7MXXu39t3XIHit4NJf1XtZ4W", Code: "A2020", Name: "Basement Walls", GroupElement: "A20 - Basement Construction", Category: types.ElementCategoryFoundations, UsefulLifeYears: 75},
		{ID: "tzEIHMQT1eeIW8BGF5XRBwRbbVC6bZeH", Code: "B1010", Name: "Floor Construction", GroupElement: "B10 - Superstructure", Category: types.ElementCategorySuperstructure, UsefulLifeYears: 75},
		{ID: "e3qL0sEjL8kTt010PfSOyoKg1yMiaF7e", Code: "B1020", Name: "Roof Construction", GroupElement: "B10 - Superstructure", Category: types.ElementCategorySuperstructure, UsefulLifeYears: 75},
		{ID: "lwESk3cTvgD7tNqNEzCpYPdWBnnW3jsU", Code: "B2010", Name: "Exterior Walls", GroupElement: "B20 - Exterior Enclosure", Category: types.ElementCategoryExteriorEnclosure, UsefulLifeYears: 40},
		{ID: "EdxRa0iIvJDDd4ucwTRQypydbk5LLe8X", Code: "B2020", Name: "Exterior Windows", GroupElement: "B20 - Exterior Enclosure", Category: types.ElementCategoryExteriorEnclosure, UsefulLifeYears: 40},
		{ID: "cC0B65OxkN7etsloQkBVARxxbBBb1WIY", Code: "B2030", Name: "Exterior Doors", GroupElement: "B20 - Exterior Enclosure", Category: types.ElementCategoryExteriorEnclosure, UsefulLifeYears: 40},
		{ID: "Vrqd2MgZjO71Sl90NnYlTpI01aDbDSae", Code: "B3010", Name: "Roof Coverings", GroupElement: "B30 - Roofing", Category: types.ElementCategoryRoofing, UsefulLifeYears: 20},
		{ID: "BGuGE6el7TA7pkwVmWYlnxoX47I4XdUV", Code: "B3020", Name: "Roof Openings", GroupElement: "B30 - Roofing", Category: types.ElementCategoryRoofing, UsefulLifeYears: 20},
		{ID: "cTvmCTRUlbPpOomY8GG77jbvsPWpmRBr", Code: "C1010", Name: "Partitions", GroupElement: "C10 - Interior Construction", Category: types.ElementCategoryInteriorConstruction, UsefulLifeYears: 30},
		{ID: "FSUOwu4fXLiq15Ch7xcydarEbSHxJLW9", Code: "C1020", Name: "Interior Doors", GroupElement: "C10 - Interior Construction", Category: types.ElementCategoryInteriorConstruction, UsefulLifeYears: 30},
		{ID: "q4X6goAioGkwh9d5TMDrFAhdkzpGpbvu", Code: "C1030", Name: "Fittings", GroupElement: "C10 - Interior Construction", Category: types.ElementCategoryInteriorConstruction, UsefulLifeYears: 30},
		{ID: "V1XP6w2sf90uDfh3LB23ntK352IRj20C", Code: "C2010", Name: "Stair Construction", GroupElement: "C20 - Stairs", Category: types.ElementCategoryStairs, UsefulLifeYears: 50},
		{ID: "HZeJpFmMovXSCwhN1hySWJ9mN2rGQhFc", Code: "C2020", Name: "Stair Finishes", GroupElement: "C20 - Stairs", Category: types.ElementCategoryStairs, UsefulLifeYears: 50},
		{ID: "7GonCzjxOgffJNHi3qMWOpXbLIg9Hi9b", Code: "C3010", Name: "Wall Finishes", GroupElement: "C30 - Interior Finishes", Category: types.ElementCategoryInteriorFinishes, UsefulLifeYears: 15},
		{ID: "NOBroOdtynCSPBEB0AHV6qhlSeyFvXc2", Code: "C3020", Name: "Floor Finishes", GroupElement: "C30 - Interior Finishes", Category: types.ElementCategoryInteriorFinishes, UsefulLifeYears: 15},
		{ID: "7BXWk2X5FD8ySkl4fnEB1VaOvFdlByPr", Code: "C3030", Name: "Ceiling Finishes", GroupElement: "C30 - Interior Finishes", Category: types.ElementCategoryInteriorFinishes, UsefulLifeYears: 15},
		{ID: "dsN1M5n9asIm8ip2HY2rngvsviUsdlo4", Code: "D1010", Name: "Elevators & Lifts", GroupElement: "D10 - Conveying", Category: types.ElementCategoryConveying, UsefulLifeYears: 25},
		{ID: "COqBgFS1vsyQgY1VFJRrhVqUIW83ZTPD", Code: "D1020", Name: "Escalators", GroupElement: "D10 - Conveying", Category: types.ElementCategoryConveying, UsefulLifeYears: 25},
		{ID: "CQuVltP1ZKq83Rf1KVNbMWC8lDOXKsG5", Code: "D2010", Name: "Plumbing Fixtures", GroupElement: "D20 - Plumbing", Category: types.ElementCategoryPlumbing, UsefulLifeYears: 30},
		{ID: "gk2r6F9XvWL4XqtER00oYxBhndGr2usm", Code: "D2020", Name: "Domestic Water Distribution", GroupElement: "D20 - Plumbing", Category: types.ElementCategoryPlumbing, UsefulLifeYears: 30},
		{ID: "JHzOVuyhVLdR59POD69lW06oWwyhwRw9", Code: "D2030", Name: "Sanitary Drainage", GroupElement: "D20 - Plumbing", Category: types.ElementCategoryPlumbing, UsefulLifeYears: 30},
		{ID: "3Xggcx9IBjF6vBhMrKbfkb5YLJMssp2k", Code: "D3010", Name: "Energy Supply", GroupElement: "D30 - HVAC", Category: types.ElementCategoryHVAC, UsefulLifeYears: 20},
		{ID: "OSZyzu3hT9ca1sPXKdQWyiAlnVqbplue", Code: "D3020", Name: "Heat Generating Systems", GroupElement: "D30 - HVAC", Category: types.ElementCategoryHVAC, UsefulLifeYears: 20},
		{ID: "UrAc0SemZBYzbPus0TTogYDTjtjAjg9Y", Code: "D3030", Name: "Cooling Generating Systems", GroupElement: "D30 - HVAC", Category: types.ElementCategoryHVAC, UsefulLifeYears: 20},
		{ID: "MGMEheB4H9BRHTuIcn15q8lQ56kxMtd7", Code: "D3040", Name: "Distribution Systems", GroupElement: "D30 - HVAC", Category: types.ElementCategoryHVAC, UsefulLifeYears: 20},
		{ID: "6netDtYjrB77OV0HbuILHojZhjTTnENb", Code: "D3050", Name: "Terminal & Package Units", GroupElement: "D30 - HVAC", Category: types.ElementCategoryHVAC, UsefulLifeYears: 20},
		{ID: "9JFuBKRTpzSyxX96Y6zWDPYBXtdgVBqb", Code: "D4010", Name: "Sprinklers", GroupElement: "D40 - Fire Protection", Category: types.ElementCategoryFireProtection, UsefulLifeYears: 30},
		{ID: "mylZWR9vA8dfLO864bsuK8FMjtlgwbNR", Code: "D4020", Name: "Standpipes", GroupElement: "D40 - Fire Protection", Category: types.ElementCategoryFireProtection, UsefulLifeYears: 30},
		{ID: "CZ0gA0OAv4iQz9uMJukuWbQhIustkcdz", Code: "D5010", Name: "Electrical Service & Distribution", GroupElement: "D50 - Electrical", Category: types.ElementCategoryElectrical, UsefulLifeYears: 30},
		{ID: "Q5NSDIdwZsxbTJwVxiS4to04jxDZtP3s", Code: "D5020", Name: "Lighting & Branch Wiring", GroupElement: "D50 - Electrical", Category: types.ElementCategoryElectrical, UsefulLifeYears: 30},
		{ID: "sfID4TQOQyEfrTuQFeQTcVhw2M2Vd6cQ", Code: "D5030", Name: "Communications & Security", GroupElement: "D50 - Electrical", Category: types.ElementCategoryElectrical, UsefulLifeYears: 30},
		{ID: "JhrKJOYFXg3R5Fx4WEL2VUvdFPfghwAO", Code: "E1010", Name: "Commercial Equipment", GroupElement: "E10 - Equipment", Category: types.ElementCategoryEquipment, UsefulLifeYears: 15},
		{ID: "wytGsTP16s7xuS4aQvcZR2aFjCqBdNj4", Code: "E1020", Name: "Institutional Equipment", GroupElement: "E10 - Equipment", Category: types.ElementCategoryEquipment, UsefulLifeYears: 15},
		{ID: "K9Xnr2wYNeirzsKTyfWu903wwjAydaIT", Code: "E2010", Name: "Fixed Furnishings", GroupElement: "E20 - Furnishings", Category: types.ElementCategoryFurnishings, UsefulLifeYears: 20},
		{ID: "NVDz3VkP9EEeeICruuWRBumVLGbpiM9U", Code: "F1010", Name: "Special Structures", GroupElement: "F10 - Special Construction", Category: types.ElementCategorySpecialConstruction, UsefulLifeYears: 40},
		{ID: "WgN9tfN7XBadJRbuJOk3KigdLfVc7izu", Code: "F2010", Name: "Building Elements Demolition", GroupElement: "F20 - Selective Demolition", Category: types.ElementCategorySpecialConstruction, UsefulLifeYears: 40},
		{ID: "zdUbDmhAv7YaOS63sBeCxbDVaqFFDavK", Code: "G1010", Name: "Site Clearing", GroupElement: "G10 - Site Preparation", Category: types.ElementCategorySitework, UsefulLifeYears: 50},
		{ID: "GkaCV5zgZtgdCINpblJ30YL8hXeU5QZC", Code: "G2010", Name: "Roadways", GroupElement: "G20 - Site Improvements", Category: types.ElementCategorySitework, UsefulLifeYears: 25},
		{ID: "T6ACvqZ2mhPQuesegCR0UHOVNJecFGUq", Code: "G2020", Name: "Parking Lots", GroupElement: "G20 - Site Improvements", Category: types.ElementCategorySitework, UsefulLifeYears: 25},
		{ID: "X7N98IfJ33pCcq3NjHtms1QKqNsn4DxQ", Code: "G2030", Name: "Pedestrian Paving", GroupElement: "G20 - Site Improvements", Category: types.ElementCategorySitework, UsefulLifeYears: 25},
		{ID: "4vQK7IVMaD2UodJX7t0r5TFPlCmbEjSF", Code: "G2040", Name: "Site Development", GroupElement: "G20 - Site Improvements", Category: types.ElementCategorySitework, UsefulLifeYears: 25},
		{ID: "zZQezMTOtua1MxdF99AViHvPl6icPRVs", Code: "G2050", Name: "Landscaping", GroupElement: "G20 - Site Improvements", Category: types.ElementCategorySitework, UsefulLifeYears: 25},
		{ID: "gRGrMm1DVcEYUdSYUovcSMvvxWVgvL9u", Code: "G3010", Name: "Water Supply", GroupElement: "G30 - Site Civil/Mechanical Utilities", Category: types.ElementCategorySitework, UsefulLifeYears: 40},
		{ID: "lvPm61r01zGtNXJsckBKL6x9Aow6VYUN", Code: "G3020", Name: "Sanitary Sewer", GroupElement: "G30 - Site Civil/Mechanical Utilities", Category: types.ElementCategorySitework, UsefulLifeYears: 40},
		{ID: "FXc1zYcy7mtIUIBuVEDM0eSHZJMzhBUm", Code: "G3030", Name: "Storm Sewer", GroupElement: "G30 - Site Civil/Mechanical Utilities", Category: types.ElementCategorySitework, UsefulLifeYears: 40},
		{ID: "JpcYabHsEA3zZEYRUkg2nUj4xarbTMmR", Code: "G4010", Name: "Electrical Distribution", GroupElement: "G40 - Site Electrical Utilities", Category: types.ElementCategorySitework, UsefulLifeYears: 25},
		{ID: "t3lANUKim3MAuO89Yu0eR1kwQSKpsqfv", Code: "G4020", Name: "Site Lighting", GroupElement: "G40 - Site Electrical Utilities", Category: types.ElementCategorySitework, UsefulLifeYears: 25},
}

// Elements returns the catalog with major groups and cost factors filled in.
func Elements() []types.Element {
	perGroup := make(map[string]int)
	for _, e := range uniformatElements {
		perGroup[e.Code[:1]]++
	}

	out := make([]types.Element, len(uniformatElements))
	for i, e := range uniformatElements {
		group := e.Code[:1]
		e.MajorGroup = group
		e.BaseReplacementCostFactor = utils.RoundFloat64(majorGroupShares[group]/float64(perGroup[group]), 6)
		out[i] = e
	}
	return out
}

// MajorGroupName returns the Uniformat II title of a major group letter.
func MajorGroupName(group string) string {
	return majorGroupNames[group]
}

// SyncElements makes the stored catalog match Elements(): missing elements
// are inserted, changed ones updated and elements no longer listed deleted.
func SyncElements(ctx context.Context, logger logrus.FieldLogger, repo ElementStore) error {
	elements := Elements()

	logger.WithField("count", len(elements)).Info("starting element catalog sync")

	seedIDs := make(map[string]bool, len(elements))
	for _, e := range elements {
		seedIDs[e.ID] = true
	}

	existing, err := repo.AllElements(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch existing elements: %w", err)
	}

	deleted := 0
	for _, e := range existing {
		if seedIDs[e.ID] {
			continue
		}
		logger.WithFields(logrus.Fields{"code": e.Code, "id": e.ID}).Info("deleting element")
		if err := repo.DeleteElement(ctx, e.ID); err != nil {
			return fmt.Errorf("failed to delete element %s: %w", e.Code, err)
		}
		deleted++
	}

	for i := range elements {
		if err := repo.UpsertElement(ctx, &elements[i]); err != nil {
			return fmt.Errorf("failed to upsert element %s: %w", elements[i].Code, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"upserted": len(elements),
		"deleted":  deleted,
	}).Info("element catalog sync complete")

	return nil
}
