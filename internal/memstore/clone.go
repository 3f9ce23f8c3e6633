package memstore

import (
	"fcaengine/internal/utils"
	"fcaengine/pkg/types"
)

func cloneBuilding(b types.Building) *types.Building {
	if b.ReplacementValue != nil {
		b.ReplacementValue = utils.Float64Ptr(*b.ReplacementValue)
	}
	if b.CostPerArea != nil {
		b.CostPerArea = utils.Float64Ptr(*b.CostPerArea)
	}
	return &b
}

func cloneAssessment(a types.Assessment) *types.Assessment {
	return &a
}

func cloneEntry(e types.ElementConditionEntry) *types.ElementConditionEntry {
	if e.PhotoRefs != nil {
		refs := make([]string, len(e.PhotoRefs))
		copy(refs, e.PhotoRefs)
		e.PhotoRefs = refs
	}
	return &e
}

func cloneReport(r types.Report) *types.Report {
	if r.FCI != nil {
		r.FCI = utils.Float64Ptr(*r.FCI)
	}

	byCategory := make(map[types.DeficiencyCategory]float64, len(r.TotalsByCategory))
	for k, v := range r.TotalsByCategory {
		byCategory[k] = v
	}
	r.TotalsByCategory = byCategory

	byUrgency := make(map[types.UrgencyTier]float64, len(r.TotalsByUrgency))
	for k, v := range r.TotalsByUrgency {
		byUrgency[k] = v
	}
	r.TotalsByUrgency = byUrgency

	r.Breakdown = append([]types.ElementBreakdown(nil), r.Breakdown...)
	return &r
}
