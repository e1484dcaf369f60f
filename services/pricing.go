package services

import "strings"

// feeRule prices delivery for one city: either a flat fee, or a subtotal
// threshold with a fee below it and a (usually lower) fee at or above it.
type feeRule struct {
	flat         bool
	flatFee      float64
	threshold    float64
	feeBelow     float64
	feeAtOrAbove float64
}

// cityFees is the single authoritative delivery-fee table. Cities are keyed
// by their normalized (lowercased, trimmed) names.
var cityFees = map[string]feeRule{
	"lagos":  {threshold: 5000, feeBelow: 1000, feeAtOrAbove: 0},
	"abuja":  {flat: true, flatFee: 1500},
	"ibadan": {threshold: 8000, feeBelow: 1200, feeAtOrAbove: 500},
}

// defaultDeliveryFee applies to cities not present in the table.
const defaultDeliveryFee = 2000

// DeliveryFee computes the delivery fee for an order delivered to city with
// the given subtotal. This is the only delivery-fee code path in the
// service; every caller must go through it.
func DeliveryFee(city string, subtotal float64) float64 {
	rule, ok := cityFees[normalizeCity(city)]
	if !ok {
		return defaultDeliveryFee
	}
	if rule.flat {
		return rule.flatFee
	}
	if subtotal >= rule.threshold {
		return rule.feeAtOrAbove
	}
	return rule.feeBelow
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
