// Package photomap extracts capture time and GPS position from photos and
// assembles them into a dataset suitable for plotting on a map.
package photomap

import (
	"fmt"
	"strings"
)

// DefaultExtensions are the photo extensions scanned when none are configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".heic"}

// DefaultCachePath is where the dataset is cached, relative to the run directory.
var DefaultCachePath = "saved_photos.csv"

// DayMode selects how trip days are derived from capture times.
type DayMode string

const (
	// DayOfMonth offsets the calendar day-of-month so the earliest becomes 1.
	DayOfMonth DayMode = "day-of-month"
	// Elapsed counts calendar days since the earliest capture date, starting at 1.
	Elapsed DayMode = "elapsed"
)

// ParseDayMode parses a day mode, defaulting to DayOfMonth for "".
func ParseDayMode(s string) (DayMode, error) {
	switch DayMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DayOfMonth:
		return DayOfMonth, nil
	case Elapsed:
		return Elapsed, nil
	}
	return "", fmt.Errorf("unknown day mode %q (want %q or %q)", s, DayOfMonth, Elapsed)
}

// Config holds configuration for building a dataset.
type Config struct {
	InDir      string
	Extensions []string
	CachePath  string
	DayMode    DayMode
}

func (c *Config) extensions() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}
	return c.Extensions
}
