package model

import "math"

// PurchaseEstimate is the material bound of a demand list, computed before any pattern is chosen.
type PurchaseEstimate struct {
	TotalDemand    int     `json:"total_demand"`     // Σ quantity × size, mm or mm²
	Capacity       int     `json:"capacity"`         // one stock unit, mm or mm²
	UnitsExact     float64 `json:"units_exact"`      // fractional number of units
	UnitsMin       int     `json:"units_min"`        // ceiling of UnitsExact, a lower bound on any plan
	UnitsWithWaste int     `json:"units_with_waste"` // recommended purchase with a waste allowance
	WastePercent   float64 `json:"waste_percent"`    // allowance applied, e.g. 10 for 10%
}

// CalculatePurchaseEstimate computes how many stock units the demand needs at minimum
// and with a waste allowance.
func CalculatePurchaseEstimate(items []DemandItem, stock StockUnit, wastePercent float64) PurchaseEstimate {
	total := 0
	for _, it := range items {
		total += it.Size() * it.Quantity
	}

	capacity := stock.Capacity()
	if capacity <= 0 {
		return PurchaseEstimate{TotalDemand: total, WastePercent: wastePercent}
	}

	exact := float64(total) / float64(capacity)
	minUnits := int(math.Ceil(exact))

	withWaste := int(math.Ceil(exact * (1.0 + wastePercent/100.0)))
	if withWaste < minUnits {
		withWaste = minUnits
	}

	return PurchaseEstimate{
		TotalDemand:    total,
		Capacity:       capacity,
		UnitsExact:     exact,
		UnitsMin:       minUnits,
		UnitsWithWaste: withWaste,
		WastePercent:   wastePercent,
	}
}
