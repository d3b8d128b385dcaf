package photomap

import (
	"slices"
	"time"
)

// PhotoRecord is a photo with a known capture time and position.
type PhotoRecord struct {
	Filename  string
	Taken     time.Time
	Latitude  float64
	Longitude float64

	// Day is the trip-relative day, starting at 1.
	Day int
}

// Dataset is an ordered collection of records. It is not modified once built.
type Dataset struct {
	Records []PhotoRecord
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.All())
}

// All returns the records of d. A nil dataset has none.
func (d *Dataset) All() []PhotoRecord {
	if d == nil {
		return nil
	}
	return d.Records
}

// Days returns the distinct day values in ascending order.
func (d *Dataset) Days() []int {
	seen := map[int]bool{}
	days := []int{}
	for _, r := range d.All() {
		if !seen[r.Day] {
			seen[r.Day] = true
			days = append(days, r.Day)
		}
	}
	slices.Sort(days)
	return days
}

// Match returns the first record taken at t at the given position.
func (d *Dataset) Match(t time.Time, lat, lon float64) (PhotoRecord, bool) {
	for _, r := range d.All() {
		if r.Taken.Equal(t) && r.Latitude == lat && r.Longitude == lon {
			return r, true
		}
	}
	return PhotoRecord{}, false
}

// Summary tallies the outcome of a collection run.
type Summary struct {
	Attempted int
	Added     int
	Skipped   map[SkipReason]int
}

func newSummary() *Summary {
	return &Summary{Skipped: map[SkipReason]int{}}
}
