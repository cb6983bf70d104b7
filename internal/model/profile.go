package model

import "strings"

// SteelDensity in kg/dm³.
const SteelDensity = 7.85

// Profile is a steel section sold in bars.
type Profile struct {
	Designation     string  `json:"designation"`
	Family          string  `json:"family"`            // "UPN", "Cornière"
	SurfacePerMeter float64 `json:"surface_per_meter"` // m² of coating per metre
	SectionCm2      float64 `json:"section_cm2"`       // cross-section, cm²
}

// Surface returns the coating surface of lengthMM of this profile, in m².
func (p Profile) Surface(lengthMM int) float64 {
	return p.SurfacePerMeter * float64(lengthMM) / 1000
}

// Weight returns the mass of lengthMM of this profile, in kg.
func (p Profile) Weight(lengthMM int) float64 {
	// cm² × m gives dm³ / 10
	return p.SectionCm2 * float64(lengthMM) / 1000 / 10 * SteelDensity
}

// DefaultProfiles is the built-in section catalog.
func DefaultProfiles() []Profile {
	return []Profile{
		{Designation: "UPN80", Family: "UPN", SurfacePerMeter: 0.312, SectionCm2: 11},
		{Designation: "UPN100", Family: "UPN", SurfacePerMeter: 0.392, SectionCm2: 13.5},
		{Designation: "UPN120", Family: "UPN", SurfacePerMeter: 0.448, SectionCm2: 17},
		{Designation: "UPN140", Family: "UPN", SurfacePerMeter: 0.512, SectionCm2: 20.4},
		{Designation: "Cornière 70", Family: "Cornière", SurfacePerMeter: 0.272, SectionCm2: 10.6},
		{Designation: "Cornière 60", Family: "Cornière", SurfacePerMeter: 0.226, SectionCm2: 9.2},
		{Designation: "Cornière 45", Family: "Cornière", SurfacePerMeter: 0.168, SectionCm2: 6.8},
		{Designation: "Cornière 40", Family: "Cornière", SurfacePerMeter: 0.150, SectionCm2: 6.0},
	}
}

// FindProfile looks a designation up case-insensitively, ignoring spaces.
func FindProfile(profiles []Profile, designation string) (Profile, bool) {
	want := normalizeDesignation(designation)
	for _, p := range profiles {
		if normalizeDesignation(p.Designation) == want {
			return p, true
		}
	}
	return Profile{}, false
}

func normalizeDesignation(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// MaterialStats summarizes mass and coating surface of a solution.
type MaterialStats struct {
	PurchasedWeight float64 `json:"purchased_weight"` // kg
	WasteWeight     float64 `json:"waste_weight"`     // kg
	UsedSurface     float64 `json:"used_surface"`     // m², coating area of cut pieces
	WasteSurface    float64 `json:"waste_surface"`    // m²
}

// Material computes weight and surface for bar stock of the given profile.
func (s Solution) Material(p Profile) MaterialStats {
	return MaterialStats{
		PurchasedWeight: p.Weight(s.PurchasedCapacity()),
		WasteWeight:     p.Weight(s.TotalWaste),
		UsedSurface:     p.Surface(s.UsedCapacity()),
		WasteSurface:    p.Surface(s.TotalWaste),
	}
}

// PlateMaterial computes weight and surface for plate stock using Stock.Thickness.
// Surfaces count one face.
func (s Solution) PlateMaterial() MaterialStats {
	const mm2PerM2 = 1e6
	weight := func(areaMM2 int) float64 {
		// mm² × mm = mm³, 1e6 mm³ = 1 dm³
		return float64(areaMM2) * s.Stock.Thickness / 1e6 * SteelDensity
	}
	return MaterialStats{
		PurchasedWeight: weight(s.PurchasedCapacity()),
		WasteWeight:     weight(s.TotalWaste),
		UsedSurface:     float64(s.UsedCapacity()) / mm2PerM2,
		WasteSurface:    float64(s.TotalWaste) / mm2PerM2,
	}
}
