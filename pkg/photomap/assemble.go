package photomap

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"
)

// DateTimeLayout is the layout of the EXIF DateTime tag.
var DateTimeLayout = "2006:01:02 15:04:05"

var (
	// ErrMissingTag is returned when a required tag is absent.
	ErrMissingTag = errors.New("missing tag")
	// ErrMalformedDateTime is returned when DateTime does not match DateTimeLayout.
	ErrMalformedDateTime = errors.New("malformed DateTime")
)

// SkipReason says why a photo produced no record.
type SkipReason string

const (
	SkipUnreadable          SkipReason = "unreadable"
	SkipMissingMetadata     SkipReason = "missing-metadata"
	SkipMalformedDateTime   SkipReason = "malformed-datetime"
	SkipMalformedCoordinate SkipReason = "malformed-coordinate"
	SkipInvalidHemisphere   SkipReason = "invalid-hemisphere"
)

// Result is the outcome of assembling one photo: a record, or a skip reason.
type Result struct {
	Path   string
	Record PhotoRecord
	Reason SkipReason
	Err    error
}

// OK reports whether the result carries a record.
func (r Result) OK() bool {
	return r.Reason == ""
}

func skip(path string, reason SkipReason, err error) Result {
	return Result{Path: path, Reason: reason, Err: err}
}

// Assemble reads one photo and builds its record.
// Day is left as the raw day-of-month until NormalizeDays runs.
func Assemble(path string, tr TagReader) Result {
	ts, err := tr.ReadTags(path)
	if errors.Is(err, ErrNoExif) {
		return skip(path, SkipMissingMetadata, err)
	}
	if err != nil {
		return skip(path, SkipUnreadable, err)
	}

	rec, err := build(ts)
	if err != nil {
		return skip(path, reasonFor(err), err)
	}
	rec.Filename = filepath.Base(path)
	return Result{Path: path, Record: rec}
}

func reasonFor(err error) SkipReason {
	switch {
	case errors.Is(err, ErrInvalidHemisphere):
		return SkipInvalidHemisphere
	case errors.Is(err, ErrMalformedCoordinate):
		return SkipMalformedCoordinate
	case errors.Is(err, ErrMalformedDateTime):
		return SkipMalformedDateTime
	}
	return SkipMissingMetadata
}

func build(ts *TagSet) (PhotoRecord, error) {
	var rec PhotoRecord

	required := []string{TagGPSLatitude, TagGPSLatitudeRef, TagGPSLongitude, TagGPSLongitudeRef}
	gps := map[string]Tag{}
	for _, name := range required {
		t, ok := ts.GPSTag(name)
		if !ok {
			return rec, fmt.Errorf("%w: %s", ErrMissingTag, name)
		}
		gps[name] = t
	}
	dt, ok := ts.Get(TagDateTime)
	if !ok || dt.Text == "" {
		return rec, fmt.Errorf("%w: %s", ErrMissingTag, TagDateTime)
	}

	lat, err := DMSFromNumbers(gps[TagGPSLatitude].Numbers)
	if err != nil {
		return rec, fmt.Errorf("latitude: %w", err)
	}
	rec.Latitude, err = ToLatitude(lat, gps[TagGPSLatitudeRef].Text)
	if err != nil {
		return rec, fmt.Errorf("latitude: %w", err)
	}

	lon, err := DMSFromNumbers(gps[TagGPSLongitude].Numbers)
	if err != nil {
		return rec, fmt.Errorf("longitude: %w", err)
	}
	rec.Longitude, err = ToLongitude(lon, gps[TagGPSLongitudeRef].Text)
	if err != nil {
		return rec, fmt.Errorf("longitude: %w", err)
	}

	rec.Taken, err = time.Parse(DateTimeLayout, dt.Text)
	if err != nil {
		return rec, fmt.Errorf("%w: %q", ErrMalformedDateTime, dt.Text)
	}
	rec.Day = rec.Taken.Day()

	return rec, nil
}

// Collect builds a dataset from the photos in c.InDir. Photos that cannot be
// turned into a record are logged and skipped. A missing input directory
// yields an empty dataset.
func Collect(c *Config, tr TagReader) (*Dataset, *Summary) {
	klog.Infof("collect: %s", c.InDir)
	sum := newSummary()
	ds := &Dataset{Records: []PhotoRecord{}}

	paths, err := Find(c.InDir, c.extensions())
	if err != nil {
		klog.Errorf("%s is not a valid path: %v", c.InDir, err)
		return ds, sum
	}

	for _, p := range paths {
		r := Assemble(p, tr)
		recordResult(r)
		sum.Attempted++
		if !r.OK() {
			sum.Skipped[r.Reason]++
			klog.V(1).Infof("skipping %s (%s): %v", p, r.Reason, r.Err)
			continue
		}
		sum.Added++
		ds.Records = append(ds.Records, r.Record)
	}

	NormalizeDays(ds.Records, c.DayMode)
	klog.Infof("added %d of %d photos", sum.Added, sum.Attempted)
	for reason, n := range sum.Skipped {
		klog.Infof("skipped %d photos: %s", n, reason)
	}
	return ds, sum
}

// NormalizeDays assigns trip-relative days so the earliest day is 1.
//
// In DayOfMonth mode each record's calendar day-of-month is offset by the
// smallest day-of-month in the set; this is only meaningful for trips within
// a single month. Elapsed mode counts whole calendar days from the earliest date.
func NormalizeDays(rs []PhotoRecord, mode DayMode) {
	if len(rs) == 0 {
		return
	}

	if mode == Elapsed {
		first := civilDate(rs[0].Taken)
		for _, r := range rs[1:] {
			if d := civilDate(r.Taken); d.Before(first) {
				first = d
			}
		}
		for i := range rs {
			rs[i].Day = int(civilDate(rs[i].Taken).Sub(first).Hours()/24) + 1
		}
		return
	}

	lowest := rs[0].Taken.Day()
	for _, r := range rs[1:] {
		if d := r.Taken.Day(); d < lowest {
			lowest = d
		}
	}
	for i := range rs {
		rs[i].Day = rs[i].Taken.Day() - lowest + 1
	}
}

// civilDate truncates t to midnight UTC of its calendar date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
