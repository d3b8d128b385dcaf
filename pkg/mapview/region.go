package mapview

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/tstromberg/photomap/pkg/photomap"
)

// Region is a named map view that the page can be centered on.
type Region struct {
	Name  string  `json:"name" koanf:"name"`
	Label string  `json:"label" koanf:"label"`
	Lat   float64 `json:"lat" koanf:"lat"`
	Lon   float64 `json:"lon" koanf:"lon"`
	Zoom  float64 `json:"zoom" koanf:"zoom"`
}

// TripRegion is the name of the region computed from the dataset.
const TripRegion = "trip"

// DefaultRegions are offered when no regions are configured.
var DefaultRegions = []Region{
	{Name: "world", Label: "World", Lat: 0, Lon: 0, Zoom: 1},
	{Name: "europe", Label: "Europe", Lat: 50.3785, Lon: 14.9706, Zoom: 3},
	{Name: "usa", Label: "United States", Lat: 37.0902, Lon: -95.7129, Zoom: 3},
	{Name: "rome", Label: "Rome, Italy", Lat: 41.902782, Lon: 12.496366, Zoom: 11},
	{Name: "pompeii", Label: "Pompeii, Italy", Lat: 40.7510, Lon: 14.4870, Zoom: 12},
	{Name: "florence", Label: "Florence, Italy", Lat: 43.769562, Lon: 11.255814, Zoom: 11},
	{Name: "antibes", Label: "Antibes, France", Lat: 43.56241, Lon: 7.10831, Zoom: 11},
	{Name: "mallorca", Label: "Mallorca, Spain", Lat: 39.710358, Lon: 2.995148, Zoom: 9},
	{Name: "barcelona", Label: "Barcelona, Spain", Lat: 41.390205, Lon: 2.154007, Zoom: 12},
}

const (
	minZoom   = 1
	maxZoom   = 14
	pointZoom = 12
)

// Trip returns a region framing every record in ds. It returns false for an empty dataset.
func Trip(ds *photomap.Dataset) (Region, bool) {
	if ds.Len() == 0 {
		return Region{}, false
	}

	rect := s2.EmptyRect()
	for _, r := range ds.All() {
		rect = rect.AddPoint(s2.LatLngFromDegrees(r.Latitude, r.Longitude))
	}

	center := rect.Center()
	size := rect.Size()
	span := math.Max(size.Lat.Degrees(), size.Lng.Degrees())

	return Region{
		Name:  TripRegion,
		Label: "This trip",
		Lat:   center.Lat.Degrees(),
		Lon:   center.Lng.Degrees(),
		Zoom:  zoomFor(span),
	}, true
}

// zoomFor picks a web map zoom level that fits span degrees.
func zoomFor(span float64) float64 {
	if span <= 0 {
		return pointZoom
	}
	z := math.Floor(math.Log2(360 / span))
	return math.Max(minZoom, math.Min(maxZoom, z))
}

// regions returns the configured regions, followed by the trip region if there is one.
func regions(c *Config, ds *photomap.Dataset) []Region {
	rs := c.Regions
	if len(rs) == 0 {
		rs = DefaultRegions
	}
	out := append([]Region{}, rs...)
	if t, ok := Trip(ds); ok {
		out = append(out, t)
	}
	return out
}
