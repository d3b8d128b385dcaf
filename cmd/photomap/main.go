// photomap plots geotagged photos on an interactive map.
package main

import (
	"flag"

	_ "image/jpeg"
	_ "image/png"

	"k8s.io/klog/v2"

	"github.com/tstromberg/photomap/pkg/mapview"
	"github.com/tstromberg/photomap/pkg/photomap"
	"github.com/tstromberg/photomap/pkg/settings"
)

// Flags left unset fall back to the settings file, then PHOTOMAP_ environment
// variables, then built-in defaults.
var (
	configPath = flag.String("config", "", "Location of YAML settings file")
	_          = flag.String("in", "", "Location of input photo directory (default assets)")
	_          = flag.String("extensions", "", "Comma-separated photo extensions (default .jpg,.jpeg,.heic)")
	_          = flag.String("cache", "", "Location of dataset cache (default saved_photos.csv)")
	_          = flag.String("day-mode", "", "How trip days are counted: day-of-month or elapsed")
	_          = flag.Bool("exiftool", false, "read metadata with exiftool instead of the built-in decoder")
	_          = flag.String("out", "", "Location of output directory (default site)")
	_          = flag.String("title", "", "Title of the map page")
	_          = flag.String("description", "", "Description of the map page")
	_          = flag.String("token-path", "", "Location of map token file (default mapbox_token)")
	_          = flag.Int("preview-width", 0, "Downscale previews wider than this many pixels (default 1600)")
	_          = flag.Bool("listen", false, "serve content via HTTP")
	_          = flag.String("addr", "", "host:port to bind to in listen mode (default localhost:12800)")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	s, err := settings.Load(*configPath, settings.Flags(flag.CommandLine))
	if err != nil {
		klog.Exitf("settings: %v", err)
	}

	token, err := mapview.ReadToken(s.TokenPath)
	if err != nil {
		klog.Exitf("unable to generate map: %v", err)
	}

	tr, closeReader, err := photomap.NewReader(s.Exiftool)
	if err != nil {
		klog.Exitf("reader: %v", err)
	}

	ds, err := photomap.Load(s.Core(), tr)
	if cerr := closeReader(); cerr != nil {
		klog.Warningf("close reader: %v", cerr)
	}
	if err != nil {
		klog.Exitf("load failed: %v", err)
	}
	if ds.Len() == 0 {
		klog.Warningf("no geotagged photos found in %s", s.In)
	}

	c := s.View()
	c.Token = token

	if err := mapview.Previews(c, ds, s.In); err != nil {
		klog.Exitf("previews failed: %v", err)
	}

	if err := mapview.Render(c, ds); err != nil {
		klog.Exitf("render failed: %v", err)
	}

	if s.Listen {
		if err := mapview.New(c, ds).Serve(); err != nil {
			klog.Exitf("listen failed: %v", err)
		}
	}
}
