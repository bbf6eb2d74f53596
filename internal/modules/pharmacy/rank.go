package pharmacy

import (
	"pharmago/internal/modules/geo"
	"pharmago/internal/types"
)

// RankNearest orders pharmacies by distance from origin, nearest first. Ties
// keep their input order. Pharmacies without a usable coordinate are dropped,
// and an unusable origin ranks nothing.
func RankNearest(origin types.Point, pharmacies []Pharmacy) []Ranked {
	if !geo.Valid(origin) {
		return []Ranked{}
	}
	ranked := make([]Ranked, 0, len(pharmacies))
	for _, p := range pharmacies {
		if p.Location == nil || !geo.Valid(*p.Location) {
			continue
		}
		ranked = append(ranked, Ranked{Pharmacy: p, DistanceKm: geo.DistanceKm(origin, *p.Location)})
	}
	geo.SortByDistance(ranked, func(r Ranked) float64 { return r.DistanceKm })
	return ranked
}
