package photomap

import (
	"fmt"
)

// Well-known tag names.
const (
	TagDateTime         = "DateTime"
	TagDateTimeOriginal = "DateTimeOriginal"
	TagGPSLatitudeRef   = "GPSLatitudeRef"
	TagGPSLatitude      = "GPSLatitude"
	TagGPSLongitudeRef  = "GPSLongitudeRef"
	TagGPSLongitude     = "GPSLongitude"
)

// Pointers from IFD0 to nested directories.
const (
	exifIFDPointer uint16 = 0x8769
	gpsIFDPointer  uint16 = 0x8825
)

// imageTags maps IFD0 and Exif sub-IFD tag IDs to names.
var imageTags = map[uint16]string{
	0x010e: "ImageDescription",
	0x010f: "Make",
	0x0110: "Model",
	0x0112: "Orientation",
	0x011a: "XResolution",
	0x011b: "YResolution",
	0x0128: "ResolutionUnit",
	0x0131: "Software",
	0x0132: TagDateTime,
	0x013b: "Artist",
	0x0213: "YCbCrPositioning",
	0x8298: "Copyright",
	0x8769: "ExifOffset",
	0x8825: "GPSInfo",
	0x829a: "ExposureTime",
	0x829d: "FNumber",
	0x8822: "ExposureProgram",
	0x8827: "ISOSpeedRatings",
	0x9000: "ExifVersion",
	0x9003: TagDateTimeOriginal,
	0x9004: "DateTimeDigitized",
	0x9010: "OffsetTime",
	0x9011: "OffsetTimeOriginal",
	0x9012: "OffsetTimeDigitized",
	0x9201: "ShutterSpeedValue",
	0x9202: "ApertureValue",
	0x9203: "BrightnessValue",
	0x9204: "ExposureBiasValue",
	0x9207: "MeteringMode",
	0x9209: "Flash",
	0x920a: "FocalLength",
	0x927c: "MakerNote",
	0x9286: "UserComment",
	0xa001: "ColorSpace",
	0xa002: "ExifImageWidth",
	0xa003: "ExifImageHeight",
	0xa005: "ExifInteroperabilityOffset",
	0xa402: "ExposureMode",
	0xa403: "WhiteBalance",
	0xa405: "FocalLengthIn35mmFilm",
	0xa406: "SceneCaptureType",
	0xa432: "LensSpecification",
	0xa433: "LensMake",
	0xa434: "LensModel",
}

// gpsTags maps GPS sub-IFD tag IDs to names.
var gpsTags = map[uint16]string{
	0x00: "GPSVersionID",
	0x01: TagGPSLatitudeRef,
	0x02: TagGPSLatitude,
	0x03: TagGPSLongitudeRef,
	0x04: TagGPSLongitude,
	0x05: "GPSAltitudeRef",
	0x06: "GPSAltitude",
	0x07: "GPSTimeStamp",
	0x08: "GPSSatellites",
	0x09: "GPSStatus",
	0x0a: "GPSMeasureMode",
	0x0b: "GPSDOP",
	0x0c: "GPSSpeedRef",
	0x0d: "GPSSpeed",
	0x0e: "GPSTrackRef",
	0x0f: "GPSTrack",
	0x10: "GPSImgDirectionRef",
	0x11: "GPSImgDirection",
	0x12: "GPSMapDatum",
	0x17: "GPSDestBearingRef",
	0x18: "GPSDestBearing",
	0x1b: "GPSProcessingMethod",
	0x1d: "GPSDateStamp",
	0x1e: "GPSDifferential",
	0x1f: "GPSHPositioningError",
}

// Registry resolves tag IDs within one directory to names.
type Registry map[uint16]string

var (
	// ImageRegistry covers IFD0 and the Exif sub-IFD.
	ImageRegistry = Registry(imageTags)
	// GPSRegistry covers the GPS sub-IFD.
	GPSRegistry = Registry(gpsTags)
)

// Resolve returns the name of id and whether it is a known tag.
// Unknown tags are named by their hex ID.
func (r Registry) Resolve(id uint16) (string, bool) {
	if name, ok := r[id]; ok {
		return name, true
	}
	return fmt.Sprintf("0x%04x", id), false
}

// ID returns the tag ID registered for name.
func (r Registry) ID(name string) (uint16, bool) {
	for id, n := range r {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// Tag is a single decoded tag value.
type Tag struct {
	ID    uint16
	Name  string
	Known bool

	// Text is set for ASCII values.
	Text string
	// Numbers is set for numeric values, one entry per component.
	Numbers []float64
}

// TagSet is the resolved tag table for one photo.
type TagSet struct {
	Tags map[string]Tag
	// GPS is nil when the photo has no GPS directory.
	GPS map[string]Tag
}

func newTagSet() *TagSet {
	return &TagSet{Tags: map[string]Tag{}}
}

// Get returns a tag from IFD0 or the Exif sub-IFD.
func (ts *TagSet) Get(name string) (Tag, bool) {
	t, ok := ts.Tags[name]
	return t, ok
}

// GPSTag returns a tag from the GPS directory.
func (ts *TagSet) GPSTag(name string) (Tag, bool) {
	if ts.GPS == nil {
		return Tag{}, false
	}
	t, ok := ts.GPS[name]
	return t, ok
}

// add stores t unless a tag with the same name is already present,
// so IFD0 values take precedence over sub-IFD values.
func add(m map[string]Tag, t Tag) {
	if _, ok := m[t.Name]; ok {
		return
	}
	m[t.Name] = t
}
