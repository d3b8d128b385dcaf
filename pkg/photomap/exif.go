package photomap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"k8s.io/klog/v2"
)

// ErrNoExif is returned when a file carries no EXIF block.
var ErrNoExif = errors.New("no exif data")

// TagReader reads the tag table of a photo.
type TagReader interface {
	ReadTags(path string) (*TagSet, error)
}

// NativeReader decodes EXIF in-process. JPEG files are handed to goexif
// directly; HEIF files have their Exif item located in the container first.
type NativeReader struct{}

// ReadTags implements TagReader.
func (NativeReader) ReadTags(path string) (*TagSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if isHEIF(path) {
		bs, err := heifExif(f)
		if err != nil {
			return nil, fmt.Errorf("heif: %w", err)
		}
		r = bytes.NewReader(bs)
	}

	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: %v", ErrNoExif, err)
	}
	if err != nil {
		klog.V(1).Infof("partial exif in %s: %v", path, err)
	}
	return resolve(x)
}

func isHEIF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif", ".hif":
		return true
	}
	return false
}

// resolve builds a TagSet from the decoded TIFF structure using the static registries.
func resolve(x *exif.Exif) (*TagSet, error) {
	ts := newTagSet()
	if x.Tiff == nil || len(x.Tiff.Dirs) == 0 {
		return nil, ErrNoExif
	}

	ifd0 := x.Tiff.Dirs[0]
	for _, t := range ifd0.Tags {
		add(ts.Tags, decodeTag(t, ImageRegistry))
	}

	if sub, err := subDir(x, ifd0, exifIFDPointer); err != nil {
		klog.V(1).Infof("exif sub-ifd: %v", err)
	} else if sub != nil {
		for _, t := range sub.Tags {
			add(ts.Tags, decodeTag(t, ImageRegistry))
		}
	}

	gps, err := subDir(x, ifd0, gpsIFDPointer)
	if err != nil {
		klog.V(1).Infof("gps sub-ifd: %v", err)
	}
	if gps != nil {
		ts.GPS = map[string]Tag{}
		for _, t := range gps.Tags {
			add(ts.GPS, decodeTag(t, GPSRegistry))
		}
	}

	return ts, nil
}

// subDir decodes the directory referenced by the pointer tag ptr in dir.
// It returns nil without error when the pointer is absent.
func subDir(x *exif.Exif, dir *tiff.Dir, ptr uint16) (*tiff.Dir, error) {
	var pt *tiff.Tag
	for _, t := range dir.Tags {
		if t.Id == ptr {
			pt = t
			break
		}
	}
	if pt == nil {
		return nil, nil
	}

	offset, err := pt.Int64(0)
	if err != nil {
		return nil, fmt.Errorf("pointer 0x%04x: %w", ptr, err)
	}
	if offset <= 0 || offset >= int64(len(x.Raw)) {
		return nil, fmt.Errorf("pointer 0x%04x: offset %d out of range", ptr, offset)
	}

	r := bytes.NewReader(x.Raw)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	d, _, err := tiff.DecodeDir(r, x.Tiff.Order)
	if err != nil {
		return nil, fmt.Errorf("decode dir 0x%04x: %w", ptr, err)
	}
	return d, nil
}

func decodeTag(t *tiff.Tag, reg Registry) Tag {
	name, known := reg.Resolve(t.Id)
	out := Tag{ID: t.Id, Name: name, Known: known}

	switch t.Format() {
	case tiff.StringVal:
		s, err := t.StringVal()
		if err == nil {
			out.Text = strings.TrimRight(s, "\x00 ")
		}
	case tiff.RatVal:
		for i := 0; i < int(t.Count); i++ {
			num, den, err := t.Rat2(i)
			if err != nil {
				break
			}
			if den == 0 {
				out.Numbers = append(out.Numbers, math.NaN())
				continue
			}
			out.Numbers = append(out.Numbers, float64(num)/float64(den))
		}
	case tiff.IntVal:
		for i := 0; i < int(t.Count); i++ {
			v, err := t.Int64(i)
			if err != nil {
				break
			}
			out.Numbers = append(out.Numbers, float64(v))
		}
	case tiff.FloatVal:
		for i := 0; i < int(t.Count); i++ {
			v, err := t.Float(i)
			if err != nil {
				break
			}
			out.Numbers = append(out.Numbers, v)
		}
	}
	return out
}
