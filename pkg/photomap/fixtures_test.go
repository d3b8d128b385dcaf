package photomap

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

const (
	tiffASCII    = 2
	tiffLong     = 4
	tiffRational = 5
)

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) tiffEntry {
	b := append([]byte(s), 0)
	return tiffEntry{tag: tag, typ: tiffASCII, count: uint32(len(b)), data: b}
}

func longEntry(tag uint16, v uint32) tiffEntry {
	return tiffEntry{tag: tag, typ: tiffLong, count: 1, data: binary.LittleEndian.AppendUint32(nil, v)}
}

func rationalEntry(tag uint16, vals ...[2]uint32) tiffEntry {
	var b []byte
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint32(b, v[0])
		b = binary.LittleEndian.AppendUint32(b, v[1])
	}
	return tiffEntry{tag: tag, typ: tiffRational, count: uint32(len(vals)), data: b}
}

// dmsEntry encodes whole degrees, minutes and seconds as rationals.
func dmsEntry(tag uint16, d, m, s uint32) tiffEntry {
	return rationalEntry(tag, [2]uint32{d, 1}, [2]uint32{m, 1}, [2]uint32{s, 1})
}

// gpsEntries returns a GPS directory for the given hemisphere letters.
func gpsEntries(latRef string, lat [3]uint32, lonRef string, lon [3]uint32) []tiffEntry {
	return []tiffEntry{
		asciiEntry(0x01, latRef),
		dmsEntry(0x02, lat[0], lat[1], lat[2]),
		asciiEntry(0x03, lonRef),
		dmsEntry(0x04, lon[0], lon[1], lon[2]),
	}
}

// encodeIFD lays out a directory at offset start, followed by its out-of-line values.
func encodeIFD(start uint32, entries []tiffEntry) []byte {
	le := binary.LittleEndian
	dataStart := start + 2 + uint32(len(entries))*12 + 4

	var ifd, data []byte
	ifd = le.AppendUint16(ifd, uint16(len(entries)))
	for _, e := range entries {
		ifd = le.AppendUint16(ifd, e.tag)
		ifd = le.AppendUint16(ifd, e.typ)
		ifd = le.AppendUint32(ifd, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			ifd = append(ifd, v...)
			continue
		}
		ifd = le.AppendUint32(ifd, dataStart+uint32(len(data)))
		data = append(data, e.data...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}
	ifd = le.AppendUint32(ifd, 0)
	return append(ifd, data...)
}

// buildTIFF returns a little-endian TIFF block with an optional DateTime and GPS directory.
func buildTIFF(dateTime string, gps []tiffEntry) []byte {
	var ifd0 []tiffEntry
	if dateTime != "" {
		ifd0 = append(ifd0, asciiEntry(0x0132, dateTime))
	}
	// An unregistered tag, to exercise raw tag naming.
	ifd0 = append(ifd0, asciiEntry(0x7777, "raw"))
	if gps != nil {
		ifd0 = append(ifd0, longEntry(0x8825, 0))
	}

	body := encodeIFD(8, ifd0)
	if gps != nil {
		gpsStart := 8 + uint32(len(body))
		ifd0[len(ifd0)-1] = longEntry(0x8825, gpsStart)
		body = encodeIFD(8, ifd0)
		body = append(body, encodeIFD(gpsStart, gps)...)
	}

	return append([]byte{'I', 'I', 42, 0, 8, 0, 0, 0}, body...)
}

// buildJPEG returns a small JPEG, with an APP1 Exif segment when tiffBlock is non-nil.
func buildJPEG(t *testing.T, tiffBlock []byte) []byte {
	t.Helper()
	var img bytes.Buffer
	if err := jpeg.Encode(&img, image.NewGray(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	raw := img.Bytes()
	if tiffBlock == nil {
		return raw
	}

	seg := append([]byte("Exif\x00\x00"), tiffBlock...)
	out := []byte{0xff, 0xd8, 0xff, 0xe1}
	out = binary.BigEndian.AppendUint16(out, uint16(len(seg)+2))
	out = append(out, seg...)
	return append(out, raw[2:]...)
}

func mkbox(typ string, payload []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(8+len(payload)))
	b = append(b, typ...)
	return append(b, payload...)
}

func heifFtyp() []byte {
	return mkbox("ftyp", []byte("heic\x00\x00\x00\x00mif1heic"))
}

// infe is a version 2 item info entry with an empty name.
func infe(id uint16, typ string) []byte {
	p := []byte{2, 0, 0, 0}
	p = binary.BigEndian.AppendUint16(p, id)
	p = binary.BigEndian.AppendUint16(p, 0)
	p = append(p, typ...)
	p = append(p, 0)
	return mkbox("infe", p)
}

func iinfBody(entries ...[]byte) []byte {
	b := binary.BigEndian.AppendUint16([]byte{0, 0, 0, 0}, uint16(len(entries)))
	for _, e := range entries {
		b = append(b, e...)
	}
	return b
}

// buildBareHEIF returns a HEIF container whose only item is an image.
func buildBareHEIF() []byte {
	iinf := mkbox("iinf", iinfBody(infe(1, "hvc1")))
	meta := mkbox("meta", append([]byte{0, 0, 0, 0}, iinf...))
	return append(heifFtyp(), meta...)
}

// buildHEIF returns a minimal HEIF container holding tiffBlock as its Exif item.
func buildHEIF(tiffBlock []byte) []byte {
	be := binary.BigEndian

	ftyp := heifFtyp()
	iinf := mkbox("iinf", iinfBody(infe(1, "hvc1"), infe(2, "Exif")))

	item := be.AppendUint32(nil, 6)
	item = append(item, "Exif\x00\x00"...)
	item = append(item, tiffBlock...)

	meta := func(exifOffset uint32) []byte {
		// iloc version 0, 4-byte offsets and lengths, no base offset.
		p := []byte{0, 0, 0, 0, 0x44, 0x00}
		p = be.AppendUint16(p, 2)
		p = be.AppendUint16(p, 1)
		p = be.AppendUint16(p, 0)
		p = be.AppendUint16(p, 1)
		p = be.AppendUint32(p, 0)
		p = be.AppendUint32(p, 0)
		p = be.AppendUint16(p, 2)
		p = be.AppendUint16(p, 0)
		p = be.AppendUint16(p, 1)
		p = be.AppendUint32(p, exifOffset)
		p = be.AppendUint32(p, uint32(len(item)))

		body := []byte{0, 0, 0, 0}
		body = append(body, iinf...)
		body = append(body, mkbox("iloc", p)...)
		return mkbox("meta", body)
	}

	offset := uint32(len(ftyp) + len(meta(0)) + 8)
	out := append([]byte{}, ftyp...)
	out = append(out, meta(offset)...)
	return append(out, mkbox("mdat", item)...)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// romeGPS is 41°54'10" N, 12°29'47" E.
func romeGPS() []tiffEntry {
	return gpsEntries("N", [3]uint32{41, 54, 10}, "E", [3]uint32{12, 29, 47})
}
