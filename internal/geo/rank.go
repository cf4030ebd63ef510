package geo

import "sort"

// Locatable exposes a coordinate pair in degrees.
type Locatable interface {
	Coordinates() (lat, lon float64)
}

// Ranked pairs an item with its computed distance from a target.
type Ranked[T Locatable] struct {
	Item     T
	Distance float64
}

// RankByDistance returns all items ordered by ascending distance from the
// target coordinate. Ties keep input order.
func RankByDistance[T Locatable](lat, lon float64, items []T) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		itemLat, itemLon := item.Coordinates()
		ranked = append(ranked, Ranked[T]{
			Item:     item,
			Distance: Distance(lat, lon, itemLat, itemLon),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked
}

// Nearest returns at most n items ordered by ascending distance from the
// target coordinate.
func Nearest[T Locatable](lat, lon float64, items []T, n int) []Ranked[T] {
	ranked := RankByDistance(lat, lon, items)
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
