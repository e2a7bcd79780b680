package reader

// Region is a named tap zone of the reader surface.
type Region string

const (
	RegionTop    Region = "top"
	RegionBottom Region = "bottom"
	RegionLeft   Region = "left"
	RegionRight  Region = "right"
	RegionCenter Region = "center"
)

// Rect is a region rectangle in surface percentages.
type Rect struct {
	Name   Region
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Regions lays out the five tap zones for the given margin. The edge zones
// each span (50 - margin/2) percent of the relevant axis; the center fills
// what remains between them.
func Regions(margin float64) []Rect {
	w := 50 - margin/2
	return []Rect{
		{Name: RegionTop, X: 0, Y: 0, Width: 100, Height: w},
		{Name: RegionBottom, X: 0, Y: 100 - w, Width: 100, Height: w},
		{Name: RegionLeft, X: 0, Y: 0, Width: w, Height: 100},
		{Name: RegionRight, X: 100 - w, Y: 0, Width: w, Height: 100},
		{Name: RegionCenter, X: w, Y: w, Width: 100 - w*2, Height: 100 - w*2},
	}
}

// HitRegions returns every region containing the point (x, y), both in
// percent of the surface. Edges are inclusive, so a corner point belongs to
// two regions and a point outside [0, 100] to none.
func HitRegions(x, y, margin float64) []Region {
	var hits []Region
	for _, r := range Regions(margin) {
		if x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height {
			hits = append(hits, r.Name)
		}
	}
	return hits
}
