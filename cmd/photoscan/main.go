// photoscan extracts photo locations into the dataset cache and summarizes
// them by day, without rendering a map.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"k8s.io/klog/v2"

	"github.com/tstromberg/photomap/pkg/photomap"
	"github.com/tstromberg/photomap/pkg/settings"
)

var (
	configPath = flag.String("config", "", "Location of YAML settings file")
	refresh    = flag.Bool("refresh", false, "rebuild the cache even if one exists")
	_          = flag.String("in", "", "Location of input photo directory (default assets)")
	_          = flag.String("extensions", "", "Comma-separated photo extensions (default .jpg,.jpeg,.heic)")
	_          = flag.String("cache", "", "Location of dataset cache (default saved_photos.csv)")
	_          = flag.String("day-mode", "", "How trip days are counted: day-of-month or elapsed")
	_          = flag.Bool("exiftool", false, "read metadata with exiftool instead of the built-in decoder")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	s, err := settings.Load(*configPath, settings.Flags(flag.CommandLine))
	if err != nil {
		klog.Exitf("settings: %v", err)
	}
	c := s.Core()

	tr, closeReader, err := photomap.NewReader(s.Exiftool)
	if err != nil {
		klog.Exitf("reader: %v", err)
	}
	defer closeReader()

	var ds *photomap.Dataset
	if *refresh {
		var sum *photomap.Summary
		ds, sum = photomap.Collect(c, tr)
		if c.CachePath != "" {
			if err := photomap.WriteCache(c.CachePath, ds); err != nil {
				klog.Exitf("write cache: %v", err)
			}
		}
		fmt.Printf("%d of %d photos added\n", sum.Added, sum.Attempted)
		for reason, n := range sum.Skipped {
			fmt.Printf("  %d skipped: %s\n", n, reason)
		}
	} else {
		ds, err = photomap.Load(c, tr)
		if err != nil {
			klog.Exitf("load failed: %v", err)
		}
	}

	printDays(ds)
}

// printDays writes one line per trip day: photo count, time span and the
// first photo's position.
func printDays(ds *photomap.Dataset) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tPHOTOS\tFIRST\tLAST\tSTART")
	for _, d := range ds.Days() {
		var rs []photomap.PhotoRecord
		for _, r := range ds.All() {
			if r.Day == d {
				rs = append(rs, r)
			}
		}
		first, last := rs[0], rs[0]
		for _, r := range rs[1:] {
			if r.Taken.Before(first.Taken) {
				first = r
			}
			if r.Taken.After(last.Taken) {
				last = r
			}
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.5f,%.5f\n", d, len(rs),
			first.Taken.Format(photomap.CacheTimeLayout), last.Taken.Format(photomap.CacheTimeLayout),
			first.Latitude, first.Longitude)
	}
	tw.Flush()
}
