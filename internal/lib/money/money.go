// Package money содержит помощники для денежных расчётов.
package money

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

// Round2 округляет значение до двух знаков после запятой (half away from zero)
// по десятичной записи числа, поэтому 1.005 дает 1.01.
// NaN и бесконечности возвращаются без изменений.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Clamp ограничивает значение отрезком [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Percent возвращает pct процентов от v.
func Percent(v, pct float64) float64 {
	return v * (pct / 100)
}
