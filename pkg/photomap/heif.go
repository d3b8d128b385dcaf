package photomap

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go4.org/media/heif"
)

// heifExif returns the TIFF block of the Exif item stored in a HEIF container.
// A container that decodes but has no Exif item yields ErrNoExif.
func heifExif(ra io.ReaderAt) (bs []byte, err error) {
	// heif panics on Exif extents shorter than their offset field.
	defer func() {
		if r := recover(); r != nil {
			bs, err = nil, fmt.Errorf("malformed exif item: %v", r)
		}
	}()

	bs, err = heif.Open(ra).EXIF()
	if errors.Is(err, heif.ErrNoEXIF) {
		return nil, fmt.Errorf("%w: %v", ErrNoExif, err)
	}
	if err != nil {
		return nil, err
	}
	// EXIF strips the item's offset field; the TIFF header usually follows an "Exif\0\0" marker.
	return bytes.TrimPrefix(bs, []byte("Exif\x00\x00")), nil
}
