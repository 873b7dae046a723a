// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/shopspring/decimal"
)

// Percent returns used/capacity as a percentage rounded to one decimal,
// half away from zero. A non-positive capacity yields 0.
func Percent(used, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	d := decimal.NewFromInt(int64(used) * 100).DivRound(decimal.NewFromInt(int64(capacity)), constants.PercentDecimals)
	f, _ := d.Float64()
	return f
}

// FloorDiv divides and truncates toward zero. Non-positive divisors yield 0.
func FloorDiv(value int, divisor float64) int {
	if divisor <= 0 || value <= 0 {
		return 0
	}
	return int(math.Floor(float64(value) / divisor))
}

// FloorPercentOf returns floor(value * percent / 100).
func FloorPercentOf(value, percent int) int {
	if value <= 0 || percent <= 0 {
		return 0
	}
	return value * percent / 100
}

// MinInt returns the minimum of two int values
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxInt returns the maximum of two int values
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
