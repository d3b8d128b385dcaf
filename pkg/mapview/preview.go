package mapview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/otiai10/copy"
	"github.com/tstromberg/photomap/pkg/photomap"
	"k8s.io/klog/v2"
)

// PreviewQuality is the JPEG quality of downscaled previews.
var PreviewQuality = 85

// Previews places a display copy of every photo in ds under OutDir. Photos
// wider than c.PreviewWidth are downscaled; others are copied as-is. Existing
// previews are kept unless the source is newer.
func Previews(c *Config, ds *photomap.Dataset, inDir string) error {
	dir := filepath.Join(c.OutDir, photoDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	seen := map[string]bool{}
	made := 0
	for _, r := range ds.All() {
		name := DisplayName(r.Filename)
		if seen[name] {
			continue
		}
		seen[name] = true

		src := filepath.Join(inDir, name)
		dst := filepath.Join(dir, name)
		updated, err := preview(src, dst, c.PreviewWidth)
		if err != nil {
			klog.Warningf("no preview for %s: %v", r.Filename, err)
			continue
		}
		if updated {
			made++
		}
	}

	klog.Infof("%d previews updated in %s", made, dir)
	return nil
}

// preview writes the display copy of src to dest if it is missing or stale.
func preview(src string, dest string, width int) (bool, error) {
	sst, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}

	ic, err := readConfig(src)
	if err != nil {
		return false, err
	}
	resize := width > 0 && ic.Width > width

	dst, err := os.Stat(dest)
	switch {
	case err != nil:
		klog.V(1).Infof("updating %s: does not exist", dest)
	case sst.ModTime().After(dst.ModTime()):
		klog.V(1).Infof("updating %s: source newer", dest)
	case !resize && sst.Size() != dst.Size():
		klog.V(1).Infof("updating %s: size mismatch", dest)
	default:
		klog.V(1).Infof("%s is current", dest)
		return false, nil
	}

	if !resize {
		if err := copy.Copy(src, dest); err != nil {
			return false, fmt.Errorf("copy: %w", err)
		}
		return true, nil
	}

	img, err := imgio.Open(src)
	if err != nil {
		return false, fmt.Errorf("imgio.Open: %w", err)
	}
	if err := downscale(img, dest, width); err != nil {
		return false, err
	}
	return true, nil
}

func downscale(i image.Image, path string, width int) error {
	if i.Bounds().Dx() == 0 || i.Bounds().Dy() == 0 {
		return fmt.Errorf("empty image: %+v", i.Bounds())
	}

	scale := float64(i.Bounds().Dx()) / float64(width)
	height := int(float64(i.Bounds().Dy()) / scale)
	if height < 1 {
		height = 1
	}

	klog.V(1).Infof("creating %dx%d preview: %s", width, height, path)
	rimg := transform.Resize(i, width, height, transform.Lanczos)
	if err := imgio.Save(path, rimg, imgio.JPEGEncoder(PreviewQuality)); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func readConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("unable to decode: %w", err)
	}
	return ic, nil
}
