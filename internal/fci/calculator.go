// Package fci turns an assessment's element condition ledger into a Facility
// Condition Index. Everything here is pure; callers load the inputs.
package fci

import (
	"math"
	"sort"

	"fcaengine/internal/utils"
	"fcaengine/pkg/types"
)

// ElementLookup resolves catalog entries by id.
type ElementLookup interface {
	Element(id string) (*types.Element, bool)
}

// Catalog is an ElementLookup over a fixed set of elements.
type Catalog map[string]*types.Element

func NewCatalog(elements []*types.Element) Catalog {
	c := make(Catalog, len(elements))
	for _, e := range elements {
		c[e.ID] = e
	}
	return c
}

func (c Catalog) Element(id string) (*types.Element, bool) {
	e, ok := c[id]
	return e, ok
}

type Input struct {
	Entries  []*types.ElementConditionEntry
	Building *types.Building
	Catalog  ElementLookup
}

type Result struct {
	PolicyVersion    string                               `json:"policyVersion"`
	FCI              *float64                             `json:"fci"`
	Classification   types.Classification                 `json:"classification"`
	Description      string                               `json:"description,omitempty"`
	Recommendation   string                               `json:"recommendation,omitempty"`
	ReplacementValue float64                              `json:"replacementValue"`
	DeficiencyCost   float64                              `json:"deficiencyCost"`
	TotalsByCategory map[types.DeficiencyCategory]float64 `json:"totalsByCategory"`
	TotalsByUrgency  map[types.UrgencyTier]float64        `json:"totalsByUrgency"`
	Breakdown        []types.ElementBreakdown             `json:"breakdown"`
}

// Calculate costs every entry, aggregates deficiency totals and derives the
// FCI. The FCI is nil when the replacement value is not positive.
func Calculate(policy *Policy, in Input) (*Result, error) {
	if policy == nil {
		policy = DefaultPolicy
	}

	if in.Building == nil {
		return nil, types.NewError(types.CodeValidation, "building is required to calculate fci")
	}

	replacementValue := in.Building.CurrentReplacementValue()

	entries := make([]*types.ElementConditionEntry, len(in.Entries))
	copy(entries, in.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ElementID < entries[j].ElementID
	})

	result := &Result{
		PolicyVersion:    policy.Version,
		ReplacementValue: replacementValue,
		TotalsByCategory: make(map[types.DeficiencyCategory]float64, len(types.DeficiencyCategories)),
		TotalsByUrgency:  make(map[types.UrgencyTier]float64, len(types.UrgencyTiers)),
		Breakdown:        make([]types.ElementBreakdown, 0, len(entries)),
	}

	for _, c := range types.DeficiencyCategories {
		result.TotalsByCategory[c] = 0
	}
	for _, u := range types.UrgencyTiers {
		result.TotalsByUrgency[u] = 0
	}

	for _, entry := range entries {
		if entry.Rating < types.MinConditionRating || entry.Rating > types.MaxConditionRating {
			return nil, types.NewError(types.CodeValidation, "element %s has rating %d outside %d-%d", entry.ElementID, entry.Rating, types.MinConditionRating, types.MaxConditionRating)
		}

		element, ok := lookup(in.Catalog, entry.ElementID)
		if !ok {
			return nil, types.NewError(types.CodeValidation, "element %s is not in the catalog", entry.ElementID)
		}

		line := costEntry(policy, element, entry, replacementValue)
		if line.RepairCost > 0 {
			result.DeficiencyCost += line.RepairCost
			result.TotalsByCategory[*line.DeficiencyCategory] += line.RepairCost
			result.TotalsByUrgency[*line.Urgency] += line.RepairCost
		}

		result.Breakdown = append(result.Breakdown, line)
	}

	result.DeficiencyCost = utils.RoundMoney(result.DeficiencyCost)
	for k, v := range result.TotalsByCategory {
		result.TotalsByCategory[k] = utils.RoundMoney(v)
	}
	for k, v := range result.TotalsByUrgency {
		result.TotalsByUrgency[k] = utils.RoundMoney(v)
	}

	result.FCI = Index(result.DeficiencyCost, replacementValue)
	result.Classification = policy.Classify(result.FCI)
	if band := policy.Band(result.FCI); band != nil {
		result.Description = band.Description
		result.Recommendation = band.Recommendation
	}

	return result, nil
}

// Index is deficiencyCost / replacementValue, or nil when the ratio is undefined.
func Index(deficiencyCost, replacementValue float64) *float64 {
	if !(replacementValue > 0) || math.IsInf(replacementValue, 0) {
		return nil
	}

	fci := deficiencyCost / replacementValue
	return &fci
}

func costEntry(policy *Policy, element *types.Element, entry *types.ElementConditionEntry, replacementValue float64) types.ElementBreakdown {
	severity := policy.SeverityOf(entry.Rating)
	elementValue := element.BaseReplacementCostFactor * replacementValue

	line := types.ElementBreakdown{
		ElementID:    element.ID,
		Code:         element.Code,
		Name:         element.Name,
		Category:     element.Category,
		Rating:       entry.Rating,
		Severity:     severity,
		ElementValue: utils.RoundMoney(elementValue),
	}

	if entry.Rating > policy.DeficiencyMaxRating {
		return line
	}

	cost := utils.RoundMoney(elementValue*severity)
	if cost <= 0 {
		return line
	}

	category := policy.CategoryFor(element.Category, entry.Rating)
	urgency, ok := policy.Urgency[entry.Rating]
	if !ok {
		urgency = types.UrgencyLongTerm
	}

	line.RepairCost = cost
	line.DeficiencyCategory = &category
	line.Urgency = &urgency

	return line
}

func lookup(catalog ElementLookup, id string) (*types.Element, bool) {
	if catalog == nil {
		return nil, false
	}
	return catalog.Element(id)
}
