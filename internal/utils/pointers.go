package utils

import (
	"math"
	"time"
)

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value p points at, or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func Float64Ptr(f float64) *float64 { return Ptr(f) }

func IntPtr(i int) *int { return Ptr(i) }

func StringPtr(s string) *string { return Ptr(s) }

func TimePtr(t time.Time) *time.Time { return Ptr(t) }

func PtrString(s *string) string { return Deref(s) }

// RoundFloat64 rounds half away from zero to the given number of decimal places.
func RoundFloat64(f float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(f*factor) / factor
}

// RoundMoney rounds to cents.
func RoundMoney(f float64) float64 {
	return RoundFloat64(f, 2)
}
