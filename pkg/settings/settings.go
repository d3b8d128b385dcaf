// Package settings loads photomap settings from defaults, an optional YAML
// file, PHOTOMAP_ environment variables and command-line flags, in that order.
package settings

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/tstromberg/photomap/pkg/mapview"
	"github.com/tstromberg/photomap/pkg/photomap"
	"k8s.io/klog/v2"
)

// EnvPrefix is the prefix of environment variables read as settings.
const EnvPrefix = "PHOTOMAP_"

// PathEnvVar overrides the settings file location.
const PathEnvVar = EnvPrefix + "CONFIG"

// DefaultPaths are searched in order when no settings file is given.
var DefaultPaths = []string{"photomap.yaml", "photomap.yml"}

// Settings is the combined configuration of the photomap commands.
type Settings struct {
	In         string   `koanf:"in"`
	Extensions []string `koanf:"extensions"`
	Cache      string   `koanf:"cache"`
	DayMode    string   `koanf:"day_mode"`
	Exiftool   bool     `koanf:"exiftool"`

	Out          string           `koanf:"out"`
	Title        string           `koanf:"title"`
	Description  string           `koanf:"description"`
	TokenPath    string           `koanf:"token_path"`
	Regions      []mapview.Region `koanf:"regions"`
	Addr         string           `koanf:"addr"`
	Listen       bool             `koanf:"listen"`
	PreviewWidth int              `koanf:"preview_width"`
}

func defaults() Settings {
	return Settings{
		In:           "assets",
		Extensions:   photomap.DefaultExtensions,
		Cache:        photomap.DefaultCachePath,
		DayMode:      string(photomap.DayOfMonth),
		Out:          "site",
		Title:        "Photo Map Viewer",
		Description:  "Uses extracted GPS info from photos to plot them on the map. Click on any point to show the photo taken there!",
		TokenPath:    mapview.DefaultTokenPath,
		Addr:         "localhost:12800",
		PreviewWidth: 1600,
	}
}

// flagKeys are the settings that may be given as command-line flags.
var flagKeys = []string{
	"in", "extensions", "cache", "day_mode", "exiftool",
	"out", "title", "description", "token_path", "addr", "listen", "preview_width",
}

// Flags returns the settings flags that were set on fs, keyed by setting
// name. Flag names use dashes where setting names use underscores.
func Flags(fs *flag.FlagSet) map[string]any {
	m := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if slices.Contains(flagKeys, key) {
			m[key] = f.Value.String()
		}
	})
	return m
}

// sliceKeys may be given as comma-separated strings.
var sliceKeys = []string{"extensions"}

// Load layers the settings sources. An empty path searches DefaultPaths;
// a named file that does not exist is an error. Overrides, usually the
// flags set on the command line, are applied last.
func Load(path string, overrides map[string]any) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("settings file: %w", err)
	}
	if path != "" {
		klog.V(1).Infof("loading settings from %s", path)
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps PHOTOMAP_DAY_MODE to day_mode.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		v, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks settings that cannot be defaulted.
func (s *Settings) Validate() error {
	if _, err := photomap.ParseDayMode(s.DayMode); err != nil {
		return err
	}
	if s.PreviewWidth < 0 {
		return fmt.Errorf("preview_width must not be negative, got %d", s.PreviewWidth)
	}
	if len(s.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	return nil
}

// Core returns the dataset configuration.
func (s *Settings) Core() *photomap.Config {
	// Validate has already accepted the day mode.
	mode, _ := photomap.ParseDayMode(s.DayMode)
	return &photomap.Config{
		InDir:      s.In,
		Extensions: s.Extensions,
		CachePath:  s.Cache,
		DayMode:    mode,
	}
}

// View returns the map configuration. The token is read separately.
func (s *Settings) View() *mapview.Config {
	return &mapview.Config{
		OutDir:       s.Out,
		Title:        s.Title,
		Description:  s.Description,
		Regions:      s.Regions,
		Addr:         s.Addr,
		PreviewWidth: s.PreviewWidth,
	}
}
