package photomap

import (
	"errors"
	"fmt"
	"math"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// exiftoolNames maps exiftool field names onto registry tag names where they differ.
var exiftoolNames = map[string]string{
	"ModifyDate": TagDateTime,
	"CreateDate": "DateTimeDigitized",
	"ISO":        "ISOSpeedRatings",
}

// exiftoolImageFields are copied into the image table when present.
var exiftoolImageFields = []string{
	"ModifyDate", "DateTimeOriginal", "CreateDate", "Make", "Model",
	"LensMake", "LensModel", "Software", "Orientation", "ISO",
}

// ExiftoolReader reads tags through an exiftool process. It handles every
// container exiftool supports.
type ExiftoolReader struct {
	et *exiftool.Exiftool
}

// NewExiftoolReader starts exiftool in numeric output mode.
func NewExiftoolReader() (*ExiftoolReader, error) {
	et, err := exiftool.NewExiftool(exiftool.NoPrintConversion())
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &ExiftoolReader{et: et}, nil
}

// Close stops the exiftool process.
func (r *ExiftoolReader) Close() error {
	return r.et.Close()
}

// ReadTags implements TagReader.
func (r *ExiftoolReader) ReadTags(path string) (*TagSet, error) {
	fis := r.et.ExtractMetadata(path)
	if len(fis) == 0 {
		return nil, fmt.Errorf("extract fail for %q: no output", path)
	}
	fi := fis[0]
	if fi.Err != nil {
		return nil, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v\n", k, v)
	}

	ts := newTagSet()
	for _, f := range exiftoolImageFields {
		s, err := fi.GetString(f)
		if err != nil {
			continue
		}
		add(ts.Tags, exiftoolTag(ImageRegistry, f, s, nil))
	}

	// With numeric output, exiftool reports latitude and longitude as decimal
	// degrees. The magnitude is kept and the reference letter carries the sign.
	for _, axis := range [][2]string{
		{TagGPSLatitude, TagGPSLatitudeRef},
		{TagGPSLongitude, TagGPSLongitudeRef},
	} {
		v, err := fi.GetFloat(axis[0])
		if errors.Is(err, exiftool.ErrKeyNotFound) {
			continue
		}
		if ts.GPS == nil {
			ts.GPS = map[string]Tag{}
		}
		if err != nil {
			v = math.NaN()
		}
		add(ts.GPS, exiftoolTag(GPSRegistry, axis[0], "", []float64{math.Abs(v), 0, 0}))

		ref, err := fi.GetString(axis[1])
		if err != nil {
			klog.V(1).Infof("%s: no %s: %v", path, axis[1], err)
			continue
		}
		add(ts.GPS, exiftoolTag(GPSRegistry, axis[1], ref, nil))
	}

	return ts, nil
}

func exiftoolTag(reg Registry, field string, text string, nums []float64) Tag {
	name := field
	if n, ok := exiftoolNames[field]; ok {
		name = n
	}
	id, known := reg.ID(name)
	return Tag{ID: id, Name: name, Known: known, Text: text, Numbers: nums}
}

// NewReader returns an exiftool-backed reader if useExiftool is set, and a
// NativeReader otherwise. The returned func releases the reader.
func NewReader(useExiftool bool) (TagReader, func() error, error) {
	if !useExiftool {
		return NativeReader{}, func() error { return nil }, nil
	}
	r, err := NewExiftoolReader()
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}
