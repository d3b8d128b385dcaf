// Package mapview renders a photo dataset as an interactive map page and
// serves it over HTTP.
package mapview

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTokenPath is where the map token is read from, relative to the run directory.
var DefaultTokenPath = "mapbox_token"

// ErrMissingToken is returned when no map token is available.
var ErrMissingToken = errors.New("missing map token")

// Config holds configuration for the map view.
type Config struct {
	OutDir       string
	Title        string
	Description  string
	Token        string
	Regions      []Region
	Addr         string
	PreviewWidth int
}

// ReadToken reads the map access token from path.
func ReadToken(path string) (string, error) {
	bs, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s not found", ErrMissingToken, path)
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	tok := strings.TrimSpace(string(bs))
	if tok == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingToken, path)
	}
	return tok, nil
}

// DisplayName returns the file shown for a photo. HEIC photos are shown
// through a JPEG of the same name.
func DisplayName(filename string) string {
	ext := filepath.Ext(filename)
	if strings.EqualFold(ext, ".heic") {
		return strings.TrimSuffix(filename, ext) + ".jpg"
	}
	return filename
}

// photoDir is where previews are written, relative to OutDir.
var photoDir = filepath.Join("_", "photos")

// photoURL is the URL path of the preview for a photo.
func photoURL(filename string) string {
	return "/_/photos/" + url.PathEscape(DisplayName(filename))
}
