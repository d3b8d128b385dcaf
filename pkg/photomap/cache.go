package photomap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"k8s.io/klog/v2"
)

// CacheTimeLayout is how capture times are stored in the cache. Sub-second
// precision is not kept.
var CacheTimeLayout = "2006-01-02 15:04:05"

var cacheHeader = []string{"filename", "datetime", "latitude", "longitude", "day"}

// WriteCache stores ds as CSV at path, replacing any existing file.
func WriteCache(path string, ds *Dataset) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(cacheHeader); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range ds.All() {
		row := []string{
			r.Filename,
			r.Taken.Format(CacheTimeLayout),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			strconv.Itoa(r.Day),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

// ReadCache loads a dataset written by WriteCache.
func ReadCache(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(cacheHeader)

	hdr, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range hdr {
		cols[h] = i
	}
	for _, h := range cacheHeader {
		if _, ok := cols[h]; !ok {
			return nil, fmt.Errorf("header missing column %q", h)
		}
	}

	ds := &Dataset{Records: []PhotoRecord{}}
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func parseRow(row []string, cols map[string]int) (PhotoRecord, error) {
	var rec PhotoRecord
	var err error

	rec.Filename = row[cols["filename"]]
	rec.Taken, err = time.Parse(CacheTimeLayout, row[cols["datetime"]])
	if err != nil {
		return rec, fmt.Errorf("datetime: %w", err)
	}
	rec.Latitude, err = strconv.ParseFloat(row[cols["latitude"]], 64)
	if err != nil {
		return rec, fmt.Errorf("latitude: %w", err)
	}
	rec.Longitude, err = strconv.ParseFloat(row[cols["longitude"]], 64)
	if err != nil {
		return rec, fmt.Errorf("longitude: %w", err)
	}
	rec.Day, err = strconv.Atoi(row[cols["day"]])
	if err != nil {
		return rec, fmt.Errorf("day: %w", err)
	}
	return rec, nil
}

// Load returns the cached dataset at c.CachePath if there is one. Otherwise it
// collects a new dataset and caches it. An existing cache is never refreshed.
func Load(c *Config, tr TagReader) (*Dataset, error) {
	if c.CachePath != "" {
		_, err := os.Stat(c.CachePath)
		if err == nil {
			klog.Infof("loading cached photos from %s", c.CachePath)
			ds, err := ReadCache(c.CachePath)
			if err != nil {
				return nil, fmt.Errorf("read cache: %w", err)
			}
			return ds, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat cache: %w", err)
		}
	}

	ds, _ := Collect(c, tr)
	if c.CachePath == "" {
		return ds, nil
	}
	if err := WriteCache(c.CachePath, ds); err != nil {
		klog.Warningf("unable to write cache %s: %v", c.CachePath, err)
	} else {
		klog.Infof("cached %d photos to %s", ds.Len(), c.CachePath)
	}
	return ds, nil
}
