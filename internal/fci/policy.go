package fci

import (
	"math"

	"fcaengine/pkg/types"
)

// RatingBucket groups deficient ratings for category assignment.
type RatingBucket string

const (
	BucketSevere   RatingBucket = "severe"
	BucketModerate RatingBucket = "moderate"
)

// Band is a classification interval closed at its upper bound. Bands are
// evaluated in order, the first whose Max is >= the FCI wins.
type Band struct {
	Classification types.Classification
	Max            float64
	Description    string
	Recommendation string
}

// Policy holds every costing and classification rule the calculator applies.
// Rules are data so they can be versioned and stored with each report.
type Policy struct {
	Version string

	// Severity is the fraction of the element value needed to remediate an
	// element at a given condition rating.
	Severity map[int]float64

	// DeficiencyMaxRating is the worst-to-best cutoff: ratings above it are
	// "no action needed" and carry no deficiency cost.
	DeficiencyMaxRating int

	Buckets    map[int]RatingBucket
	Categories map[types.ElementCategory]map[RatingBucket]types.DeficiencyCategory
	Fallback   map[RatingBucket]types.DeficiencyCategory
	Urgency    map[int]types.UrgencyTier
	Bands      []Band
}

// DefaultPolicy is the 2024.1 rule set.
var DefaultPolicy = &Policy{
	Version: "2024.1",
	Severity: map[int]float64{
		1: 1.0,
		2: 0.75,
		3: 0.4,
		4: 0.1,
		5: 0.0,
	},
	DeficiencyMaxRating: 3,
	Buckets: map[int]RatingBucket{
		1: BucketSevere,
		2: BucketSevere,
		3: BucketModerate,
	},
	Categories: map[types.ElementCategory]map[RatingBucket]types.DeficiencyCategory{
		types.ElementCategoryFoundations: {
			BucketSevere:   types.DeficiencyLifeSafety,
			BucketModerate: types.DeficiencyAssetLifecycle,
		},
		types.ElementCategorySuperstructure: {
			BucketSevere:   types.DeficiencyLifeSafety,
			BucketModerate: types.DeficiencyAssetLifecycle,
		},
		types.ElementCategoryExteriorEnclosure: {
			BucketSevere:   types.DeficiencyCriticalSystems,
			BucketModerate: types.DeficiencyEnergyEfficiency,
		},
		types.ElementCategoryRoofing: {
			BucketSevere:   types.DeficiencyCriticalSystems,
			BucketModerate: types.DeficiencyAssetLifecycle,
		},
		types.ElementCategoryStairs: {
			BucketSevere:   types.DeficiencyLifeSafety,
			BucketModerate: types.DeficiencyEquityAccessibility,
		},
		types.ElementCategoryInteriorFinishes: {
			BucketSevere:   types.DeficiencyCriticalSystems,
			BucketModerate: types.DeficiencyUserExperience,
		},
		types.ElementCategoryConveying: {
			BucketSevere:   types.DeficiencyCriticalSystems,
			BucketModerate: types.DeficiencyEquityAccessibility,
		},
		types.ElementCategoryHVAC: {
			BucketSevere:   types.DeficiencyCriticalSystems,
			BucketModerate: types.DeficiencyEnergyEfficiency,
		},
		types.ElementCategoryFireProtection: {
			BucketSevere:   types.DeficiencyLifeSafety,
			BucketModerate: types.DeficiencyLifeSafety,
		},
		types.ElementCategoryElectrical: {
			BucketSevere:   types.DeficiencyLifeSafety,
			BucketModerate: types.DeficiencyEnergyEfficiency,
		},
		types.ElementCategoryFurnishings: {
			BucketSevere:   types.DeficiencyUserExperience,
			BucketModerate: types.DeficiencyUserExperience,
		},
	},
	Fallback: map[RatingBucket]types.DeficiencyCategory{
		BucketSevere:   types.DeficiencyCriticalSystems,
		BucketModerate: types.DeficiencyAssetLifecycle,
	},
	Urgency: map[int]types.UrgencyTier{
		1: types.UrgencyImmediate,
		2: types.UrgencyShortTerm,
		3: types.UrgencyLongTerm,
	},
	Bands: []Band{
		{
			Classification: types.ClassificationExcellent,
			Max:            0.1,
			Description:    "Representative of new building",
			Recommendation: "Routine maintenance only",
		},
		{
			Classification: types.ClassificationGood,
			Max:            0.4,
			Description:    "Light investment needed",
			Recommendation: "Continue preventive maintenance program",
		},
		{
			Classification: types.ClassificationFair,
			Max:            0.7,
			Description:    "Need strong plan for renovation",
			Recommendation: "Develop comprehensive renovation plan and budget",
		},
		{
			Classification: types.ClassificationCritical,
			Max:            math.Inf(1),
			Description:    "Consider demolition",
			Recommendation: "Cost of repair/replacement is at or close to 100% of new build",
		},
	},
}

// SeverityOf returns the severity for rating, zero for ratings outside the table.
func (p *Policy) SeverityOf(rating int) float64 {
	return p.Severity[rating]
}

// CategoryFor resolves the single deficiency category for an element
// category at a rating. Each (category, bucket) maps to exactly one value.
func (p *Policy) CategoryFor(category types.ElementCategory, rating int) types.DeficiencyCategory {
	bucket, ok := p.Buckets[rating]
	if !ok {
		return types.DeficiencyOther
	}

	if byBucket, ok := p.Categories[category]; ok {
		if c, ok := byBucket[bucket]; ok {
			return c
		}
	}

	if c, ok := p.Fallback[bucket]; ok {
		return c
	}

	return types.DeficiencyOther
}

// Band returns the band for fci. A nil fci has no band.
func (p *Policy) Band(fci *float64) *Band {
	if fci == nil {
		return nil
	}

	for i := range p.Bands {
		if *fci <= p.Bands[i].Max {
			return &p.Bands[i]
		}
	}

	return nil
}

func (p *Policy) Classify(fci *float64) types.Classification {
	band := p.Band(fci)
	if band == nil {
		return types.ClassificationUnknown
	}
	return band.Classification
}
