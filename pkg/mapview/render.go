package mapview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/tstromberg/photomap/pkg/photomap"
	"k8s.io/klog/v2"
)

//go:embed assets/index.tmpl
var indexTmpl string

//go:embed assets/style.css
var styleText string

// palette colors days categorically, cycling for long trips.
var palette = []string{
	"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a",
	"#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52",
}

func dayColor(day int) string {
	if day < 1 {
		day = 1
	}
	return palette[(day-1)%len(palette)]
}

// Point is a record as plotted on the map.
type Point struct {
	Filename string  `json:"filename"`
	Datetime string  `json:"datetime"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Day      int     `json:"day"`
	Color    string  `json:"color"`
	URL      string  `json:"url"`
}

// Points converts the records of ds into map points, in dataset order.
func Points(ds *photomap.Dataset) []Point {
	ps := make([]Point, 0, ds.Len())
	for _, r := range ds.All() {
		ps = append(ps, Point{
			Filename: r.Filename,
			Datetime: r.Taken.Format(photomap.CacheTimeLayout),
			Lat:      r.Latitude,
			Lon:      r.Longitude,
			Day:      r.Day,
			Color:    dayColor(r.Day),
			URL:      photoURL(r.Filename),
		})
	}
	return ps
}

type legendEntry struct {
	Day   int
	Color template.CSS
}

// Render writes the map page for ds to OutDir/index.html.
func Render(c *Config, ds *photomap.Dataset) error {
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	bs, err := renderIndex(c, ds)
	if err != nil {
		return fmt.Errorf("render index: %w", err)
	}

	p := filepath.Join(c.OutDir, "index.html")
	klog.Infof("Writing map of %d photos to %s", ds.Len(), p)
	return os.WriteFile(p, bs, 0o644)
}

func renderIndex(c *Config, ds *photomap.Dataset) ([]byte, error) {
	tmpl, err := template.New("index").Parse(indexTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	points, err := json.Marshal(Points(ds))
	if err != nil {
		return nil, fmt.Errorf("marshal points: %w", err)
	}
	rs := regions(c, ds)
	regionsJSON, err := json.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("marshal regions: %w", err)
	}

	legend := []legendEntry{}
	for _, d := range ds.Days() {
		legend = append(legend, legendEntry{Day: d, Color: template.CSS(dayColor(d))})
	}

	initial := rs[0].Name
	if ds.Len() > 0 {
		initial = TripRegion
	}

	data := struct {
		Title       string
		Description string
		Token       string
		Regions     []Region
		Initial     string
		Legend      []legendEntry
		Points      template.JS
		RegionsJSON template.JS
		Style       template.CSS
	}{
		Title:       c.Title,
		Description: c.Description,
		Token:       c.Token,
		Regions:     rs,
		Initial:     initial,
		Legend:      legend,
		Points:      template.JS(points),
		RegionsJSON: template.JS(regionsJSON),
		Style:       template.CSS(styleText),
	}

	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}
