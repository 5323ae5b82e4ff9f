// Package instance defines the launch options for a br daemon instance and
// the layered configuration resolution (defaults -> config file -> env ->
// CLI flags) used to produce them.
package instance

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AdblockBase selects the baseline filter list tier.
type AdblockBase string

const (
	AdblockBaseNone            AdblockBase = "none"
	AdblockBaseAdsAndTrackers  AdblockBase = "adsandtrackers"
	AdblockBaseFull            AdblockBase = "full"
	AdblockBaseAds             AdblockBase = "ads"
)

// Options configures a single daemon instance at launch.
type Options struct {
	Name           string
	Port           int // 0 means auto-allocate via the registry
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	Adblock        bool
	AdblockBase    AdblockBase
	AdblockLists   []string
	HumanLike      bool
	Foreground     bool
}

// DefaultOptions returns the built-in defaults named in the spec.
func DefaultOptions() Options {
	return Options{
		Name:           "default",
		Port:           0,
		Headless:       false,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		Adblock:        false,
		AdblockBase:    AdblockBaseAdsAndTrackers,
		HumanLike:      false,
		Foreground:     false,
	}
}

// fileDefaults mirrors the optional $HOME/.br/config.yaml file. Any field
// left unset in the file does not override the built-in default.
type fileDefaults struct {
	Headless       *bool    `yaml:"headless"`
	ViewportWidth  *int     `yaml:"viewport_width"`
	ViewportHeight *int     `yaml:"viewport_height"`
	Adblock        *bool    `yaml:"adblock"`
	AdblockBase    string   `yaml:"adblock_base"`
	AdblockLists   []string `yaml:"adblock_lists"`
	HumanLike      *bool    `yaml:"humanlike"`
}

// LoadConfigFile loads $HOME/.br/config.yaml (or the given path) and applies
// it on top of opts. A missing file is not an error.
func LoadConfigFile(opts *Options, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".br", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fd fileDefaults
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fd.Headless != nil {
		opts.Headless = *fd.Headless
	}
	if fd.ViewportWidth != nil {
		opts.ViewportWidth = *fd.ViewportWidth
	}
	if fd.ViewportHeight != nil {
		opts.ViewportHeight = *fd.ViewportHeight
	}
	if fd.Adblock != nil {
		opts.Adblock = *fd.Adblock
	}
	if fd.AdblockBase != "" {
		opts.AdblockBase = AdblockBase(fd.AdblockBase)
	}
	if len(fd.AdblockLists) > 0 {
		opts.AdblockLists = fd.AdblockLists
	}
	if fd.HumanLike != nil {
		opts.HumanLike = *fd.HumanLike
	}

	return nil
}

// ApplyEnv applies BR_* environment variables on top of opts, overriding
// whatever the config file set.
func ApplyEnv(opts *Options) {
	if v := os.Getenv("BR_INSTANCE"); v != "" {
		opts.Name = v
	}
	if v := os.Getenv("BR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Port = n
		}
	}
	if v := os.Getenv("BR_HEADLESS"); v != "" {
		opts.Headless = parseBool(v, opts.Headless)
	}
	if v := os.Getenv("BR_VIEWPORT_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.ViewportWidth = n
		}
	}
	if v := os.Getenv("BR_VIEWPORT_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.ViewportHeight = n
		}
	}
	if v := os.Getenv("BR_ADBLOCK"); v != "" {
		opts.Adblock = parseBool(v, opts.Adblock)
	}
	if v := os.Getenv("BR_ADBLOCK_BASE"); v != "" {
		opts.AdblockBase = AdblockBase(v)
	}
	if v := os.Getenv("BR_ADBLOCK_LISTS"); v != "" {
		opts.AdblockLists = strings.Split(v, ",")
	}
	if v := os.Getenv("BR_HUMANLIKE"); v != "" {
		opts.HumanLike = parseBool(v, opts.HumanLike)
	}
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// ParseViewport parses a "WxH" string such as "1280x720".
func ParseViewport(s string) (width, height int, err error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid viewport %q, expected WxH", s)
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid viewport width %q: %w", parts[0], err)
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid viewport height %q: %w", parts[1], err)
	}
	return width, height, nil
}

// Validate checks that the adblock base tier is one of the accepted values,
// and that referenced filter-list paths (non-URLs) exist on disk.
func (o Options) Validate() error {
	switch o.AdblockBase {
	case AdblockBaseNone, AdblockBaseAdsAndTrackers, AdblockBaseFull, AdblockBaseAds:
	default:
		return fmt.Errorf("invalid adblock base %q", o.AdblockBase)
	}

	for _, entry := range o.AdblockLists {
		if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
			continue
		}
		if _, err := os.Stat(entry); err != nil {
			return fmt.Errorf("adblock list path %q does not exist: %w", entry, err)
		}
	}

	if o.ViewportWidth < 100 || o.ViewportWidth > 5000 {
		return fmt.Errorf("viewport width must be between 100 and 5000 pixels")
	}
	if o.ViewportHeight < 100 || o.ViewportHeight > 5000 {
		return fmt.Errorf("viewport height must be between 100 and 5000 pixels")
	}

	return nil
}
