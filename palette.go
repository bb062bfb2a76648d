package osm2ride

// Palette is fixed list of colors assigned to rides by their position in the itinerary
var Palette = [...]string{"blue", "black", "green"}

// ColorForIndex returns palette color for ride at given position (cycles by modulo)
func ColorForIndex(idx int) string {
	if idx < 0 {
		idx = -idx
	}
	return Palette[idx%len(Palette)]
}
