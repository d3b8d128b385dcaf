package photomap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Find returns the photos in the top level of dir with one of the given extensions.
// Extensions are matched case-insensitively. Subdirectories are not scanned.
func Find(dir string, exts []string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	des, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("read dirents: %w", err)
	}
	sort.Sort(des)

	want := map[string]bool{}
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	found := []string{}
	for _, de := range des {
		name := de.Name()
		if strings.HasPrefix(name, ".") || de.IsDir() {
			continue
		}
		if !want[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		path := filepath.Join(dir, name)
		if de.IsSymlink() {
			st, err := os.Stat(path)
			if err != nil || !st.Mode().IsRegular() {
				klog.V(1).Infof("skipping %s: not a regular file", path)
				continue
			}
		}
		klog.V(1).Infof("found %s", path)
		found = append(found, path)
	}

	return found, nil
}
