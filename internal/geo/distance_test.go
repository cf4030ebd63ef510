package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroAndSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{53.5461, -113.4938, 51.0447, -114.0719},
		{0, 0, 0, 1},
		{-45.1, 170.2, 60.9, -140.5},
		{89.9, 10, -89.9, -170},
	}
	for _, p := range pairs {
		if d := Distance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Fatalf("distance to self = %v, want 0", d)
		}
		ab := Distance(p[0], p[1], p[2], p[3])
		ba := Distance(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// One degree of longitude on the equator: R * pi/180.
	got := Distance(0, 0, 0, 1)
	want := EarthRadiusKm * math.Pi / 180
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("equator degree = %v, want %v", got, want)
	}

	// Edmonton to Calgary, roughly 281 km.
	got = Distance(53.5461, -113.4938, 51.0447, -114.0719)
	if math.Abs(got-280.9) > 1.5 {
		t.Fatalf("edmonton-calgary = %v, want about 280.9", got)
	}
}

type point struct {
	lat, lon float64
	name     string
}

func (p point) Coordinates() (float64, float64) { return p.lat, p.lon }

func TestRankByDistanceOrdered(t *testing.T) {
	points := []point{
		{lat: 0, lon: 3, name: "far"},
		{lat: 0, lon: 1, name: "near"},
		{lat: 0, lon: 2, name: "mid"},
	}
	ranked := RankByDistance(0, 0, points)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked points, got %d", len(ranked))
	}
	order := []string{"near", "mid", "far"}
	for i, want := range order {
		if ranked[i].Item.name != want {
			t.Fatalf("position %d = %s, want %s", i, ranked[i].Item.name, want)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Distance < ranked[i-1].Distance {
			t.Fatalf("distances not ascending at %d", i)
		}
	}
}

func TestRankByDistanceStableTies(t *testing.T) {
	points := []point{
		{lat: 0, lon: 1, name: "first"},
		{lat: 0, lon: -1, name: "second"},
		{lat: 0, lon: 1, name: "third"},
	}
	ranked := RankByDistance(0, 0, points)
	order := []string{"first", "second", "third"}
	for i, want := range order {
		if ranked[i].Item.name != want {
			t.Fatalf("position %d = %s, want %s (ties must keep input order)", i, ranked[i].Item.name, want)
		}
	}
}

func TestNearestTruncates(t *testing.T) {
	points := []point{
		{lat: 0, lon: 5}, {lat: 0, lon: 1}, {lat: 0, lon: 3}, {lat: 0, lon: 2},
	}
	nearest := Nearest(0, 0, points, 2)
	if len(nearest) != 2 {
		t.Fatalf("expected 2 items, got %d", len(nearest))
	}
	if nearest[0].Item.lon != 1 || nearest[1].Item.lon != 2 {
		t.Fatalf("unexpected nearest set: %+v", nearest)
	}
	if got := Nearest(0, 0, points, 10); len(got) != 4 {
		t.Fatalf("expected all 4 items when n exceeds input, got %d", len(got))
	}
}
