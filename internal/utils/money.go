package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundCents rounds a currency amount half away from zero to two decimals.
func RoundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// SumCents adds cent-rounded amounts without accumulating binary float error,
// so a total always equals the sum of its displayed parts.
func SumCents(base float64, amounts ...float64) float64 {
	total := decimal.NewFromFloat(base).Round(2)
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a).Round(2))
	}
	return total.InexactFloat64()
}

func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
