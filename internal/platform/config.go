package platform

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the optional configuration file.
const ConfigFileName = ".redline.yaml"

// ErrConfigNotFound reports that no configuration file exists up to the filesystem root.
var ErrConfigNotFound = errors.New("config not found")

// Config holds host settings read from a .redline.yaml file.
type Config struct {
	RemoveComments bool `yaml:"remove_comments"`
	// Suffix is inserted before the extension of reviewed copies. Empty means in place.
	Suffix   string        `yaml:"suffix"`
	Include  []string      `yaml:"include"`
	Exclude  []string      `yaml:"exclude"`
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns the settings used when no file is found.
func DefaultConfig() Config {
	return Config{
		Suffix:   ".reviewed",
		Include:  []string{"**/*.docx", "**/*.docm", "**/*.dotx", "**/*.dotm"},
		Debounce: 50 * time.Millisecond,
	}
}

// Excludes returns the exclude patterns plus those that keep reviewed copies and
// Word lock files out of batch and watch runs.
func (c Config) Excludes() []string {
	out := append([]string(nil), c.Exclude...)
	out = append(out, "**/~$*")
	if c.Suffix != "" {
		for _, pattern := range c.Include {
			ext := filepath.Ext(pattern)
			if ext == "" {
				continue
			}
			out = append(out, "**/*"+c.Suffix+ext)
		}
	}
	return out
}

// FindConfig recursively looks upwards for a .redline.yaml file and returns its absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", ErrConfigNotFound
}

// LoadConfig reads path on top of DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveConfig loads the explicit path when given, else the nearest .redline.yaml
// above startDir, else the defaults.
func ResolveConfig(explicit, startDir string) (Config, string, error) {
	if explicit != "" {
		cfg, err := LoadConfig(explicit)
		return cfg, explicit, err
	}
	path, err := FindConfig(startDir)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), "", nil
	}
	if err != nil {
		return DefaultConfig(), "", err
	}
	cfg, err := LoadConfig(path)
	return cfg, path, err
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
