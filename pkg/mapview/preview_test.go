package mapview

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tstromberg/photomap/pkg/photomap"
)

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var b bytes.Buffer
	if err := jpeg.Encode(&b, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return ic.Width, ic.Height
}

func TestPreviews(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeJPEG(t, filepath.Join(in, "wide.jpg"), 64, 32)
	writeJPEG(t, filepath.Join(in, "small.jpg"), 8, 8)
	writeJPEG(t, filepath.Join(in, "IMG_2.jpg"), 8, 8)

	ds := &photomap.Dataset{Records: []photomap.PhotoRecord{
		{Filename: "wide.jpg"},
		{Filename: "small.jpg"},
		{Filename: "IMG_2.HEIC"},
		{Filename: "missing.jpg"},
	}}
	c := &Config{OutDir: out, PreviewWidth: 16}

	if err := Previews(c, ds, in); err != nil {
		t.Fatalf("Previews: %v", err)
	}

	dir := filepath.Join(out, "_", "photos")
	if w, h := imageSize(t, filepath.Join(dir, "wide.jpg")); w != 16 || h != 8 {
		t.Errorf("wide preview = %dx%d, want 16x8", w, h)
	}

	src, err := os.ReadFile(filepath.Join(in, "small.jpg"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "small.jpg"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(src, got) {
		t.Errorf("small preview differs from its source")
	}

	if _, err := os.Stat(filepath.Join(dir, "IMG_2.jpg")); err != nil {
		t.Errorf("HEIC preview not taken from its JPEG sibling: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.jpg")); !os.IsNotExist(err) {
		t.Errorf("preview created for a missing photo: %v", err)
	}
}

func TestPreviewsSimilarNames(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeJPEG(t, filepath.Join(in, "a b.jpg"), 8, 8)
	writeJPEG(t, filepath.Join(in, "a_b.jpg"), 4, 4)

	ds := &photomap.Dataset{Records: []photomap.PhotoRecord{
		{Filename: "a b.jpg"},
		{Filename: "a_b.jpg"},
	}}
	if err := Previews(&Config{OutDir: out}, ds, in); err != nil {
		t.Fatalf("Previews: %v", err)
	}

	dir := filepath.Join(out, "_", "photos")
	if w, _ := imageSize(t, filepath.Join(dir, "a b.jpg")); w != 8 {
		t.Errorf("a b.jpg preview width = %d, want 8", w)
	}
	if w, _ := imageSize(t, filepath.Join(dir, "a_b.jpg")); w != 4 {
		t.Errorf("a_b.jpg preview width = %d, want 4", w)
	}

	ps := Points(ds)
	if ps[0].URL == ps[1].URL {
		t.Errorf("both photos share the URL %s", ps[0].URL)
	}
}

func TestPreviewsKeepCurrent(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeJPEG(t, filepath.Join(in, "wide.jpg"), 64, 32)

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(in, "wide.jpg"), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	ds := &photomap.Dataset{Records: []photomap.PhotoRecord{{Filename: "wide.jpg"}}}
	c := &Config{OutDir: out, PreviewWidth: 16}
	dest := filepath.Join(out, "_", "photos", "wide.jpg")

	if err := Previews(c, ds, in); err != nil {
		t.Fatalf("Previews: %v", err)
	}
	marker := time.Now().Add(-30 * time.Minute)
	if err := os.Chtimes(dest, marker, marker); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if updated, err := preview(filepath.Join(in, "wide.jpg"), dest, 16); err != nil || updated {
		t.Errorf("preview = %v, %v; want current preview kept", updated, err)
	}

	// A newer source is picked up.
	if err := os.Chtimes(filepath.Join(in, "wide.jpg"), time.Now(), time.Now()); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if updated, err := preview(filepath.Join(in, "wide.jpg"), dest, 16); err != nil || !updated {
		t.Errorf("preview = %v, %v; want stale preview replaced", updated, err)
	}
}
