package photomap

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidHemisphere is returned for a reference other than N, S, E or W.
	ErrInvalidHemisphere = errors.New("invalid hemisphere reference")
	// ErrMalformedCoordinate is returned for non-numeric or out of range components.
	ErrMalformedCoordinate = errors.New("malformed coordinate")
)

// DMS is a coordinate as degrees, minutes and seconds.
type DMS [3]float64

// DMSFromNumbers builds a DMS from a tag value with exactly three components.
func DMSFromNumbers(ns []float64) (DMS, error) {
	if len(ns) != 3 {
		return DMS{}, fmt.Errorf("%w: want 3 components, got %d", ErrMalformedCoordinate, len(ns))
	}
	return DMS{ns[0], ns[1], ns[2]}, nil
}

// ToDecimal converts d to signed decimal degrees. S and W are negative.
func ToDecimal(d DMS, ref string) (float64, error) {
	var sign float64
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "N", "E":
		sign = 1
	case "S", "W":
		sign = -1
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidHemisphere, ref)
	}

	for _, c := range d {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return 0, fmt.Errorf("%w: %v", ErrMalformedCoordinate, d)
		}
	}

	return sign * (d[0] + d[1]/60 + d[2]/3600), nil
}

// ToLatitude is ToDecimal restricted to N/S references and |lat| <= 90.
func ToLatitude(d DMS, ref string) (float64, error) {
	return toAxis(d, ref, "NS", 90)
}

// ToLongitude is ToDecimal restricted to E/W references and |lon| <= 180.
func ToLongitude(d DMS, ref string) (float64, error) {
	return toAxis(d, ref, "EW", 180)
}

func toAxis(d DMS, ref string, refs string, limit float64) (float64, error) {
	r := strings.ToUpper(strings.TrimSpace(ref))
	if len(r) != 1 || !strings.Contains(refs, r) {
		return 0, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidHemisphere, ref, refs)
	}
	v, err := ToDecimal(d, r)
	if err != nil {
		return 0, err
	}
	if math.Abs(v) > limit {
		return 0, fmt.Errorf("%w: %f out of range", ErrMalformedCoordinate, v)
	}
	return v, nil
}
