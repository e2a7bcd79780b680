package reader

import (
	"slices"
	"testing"
)

func TestRegionsLayout(t *testing.T) {
	rects := Regions(30)

	byName := map[Region]Rect{}
	for _, r := range rects {
		byName[r.Name] = r
	}

	if got := byName[RegionLeft].Width; got != 35 {
		t.Errorf("Expected edge width 35 for margin 30, got %v", got)
	}
	center := byName[RegionCenter]
	if center.X != 35 || center.Y != 35 || center.Width != 30 || center.Height != 30 {
		t.Errorf("Unexpected center rect: %+v", center)
	}

	// Margin 100 collapses the edges; the center covers the whole surface.
	rects = Regions(100)
	for _, r := range rects {
		if r.Name == RegionCenter && r.Width != 100 {
			t.Errorf("Expected full-width center at margin 100, got %v", r.Width)
		}
	}
}

func TestHitRegionsCenter(t *testing.T) {
	hits := HitRegions(50, 50, 30)
	if !slices.Equal(hits, []Region{RegionCenter}) {
		t.Errorf("Expected exactly the center, got %v", hits)
	}
}

func TestHitRegionsCorner(t *testing.T) {
	hits := HitRegions(0, 0, 30)
	if !slices.Contains(hits, RegionTop) || !slices.Contains(hits, RegionLeft) {
		t.Errorf("Expected top and left at the origin, got %v", hits)
	}
	if slices.Contains(hits, RegionCenter) {
		t.Errorf("Did not expect center at the origin, got %v", hits)
	}
}

func TestHitRegionsEdgesInclusive(t *testing.T) {
	// x=35 sits on the boundary between left and center.
	hits := HitRegions(35, 50, 30)
	if !slices.Contains(hits, RegionLeft) || !slices.Contains(hits, RegionCenter) {
		t.Errorf("Expected boundary point in both regions, got %v", hits)
	}
}

func TestHitRegionsOutside(t *testing.T) {
	if hits := HitRegions(120, 50, 30); hits != nil {
		t.Errorf("Expected no hits outside the surface, got %v", hits)
	}
	if hits := HitRegions(-1, 50, 30); hits != nil {
		t.Errorf("Expected no hits for negative coordinates, got %v", hits)
	}
}
