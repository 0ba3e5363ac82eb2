// Package config provides chromamatte's defaults and its YAML configuration file.
// The file uses the same keys as the command line flags, with underscores in
// place of dashes, and is fed to kong as a configuration resolver.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInputDir  = "./images"
	DefaultOutputDir = "./output"
	DefaultThreshold = 100
	DefaultChroma    = "#00ff00"
	DefaultMetric    = "sum"
	DefaultSuffix    = "_transparent"
	DefaultWorkers   = 1
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// DefaultFile is looked up in the working directory when no --config is given.
	DefaultFile = "chromamatte.yaml"
)

// Config mirrors the flags of the matte command plus the global logging flags.
type Config struct {
	// InputDir is scanned, non-recursively, for png and jpeg files
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one PNG per processed image
	OutputDir string `yaml:"output_dir"`

	// Threshold is the largest color distance from a corner still treated as background
	Threshold int `yaml:"threshold"`

	// Chroma is the temporary marker color, #RGB or #RRGGBB
	Chroma string `yaml:"chroma"`

	// Metric selects the color distance, "sum" or "max"
	Metric string `yaml:"metric"`

	// Suffix is appended to the source file stem to name the output
	Suffix string `yaml:"suffix"`

	// Workers is the number of images processed at once, 0 for one per CPU
	Workers int `yaml:"workers"`

	// AutoOrient applies the EXIF orientation of JPEG files before keying
	AutoOrient bool `yaml:"auto_orient"`

	// Strict makes a batch with failed images exit with an error
	Strict bool `yaml:"strict"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json
	LogFormat string `yaml:"log_format"`
}

// Default returns a configuration holding the default values.
func Default() *Config {
	return &Config{
		InputDir:  DefaultInputDir,
		OutputDir: DefaultOutputDir,
		Threshold: DefaultThreshold,
		Chroma:    DefaultChroma,
		Metric:    DefaultMetric,
		Suffix:    DefaultSuffix,
		Workers:   DefaultWorkers,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Vars exposes the defaults to kong struct tags as ${name}.
func Vars() kong.Vars {
	return kong.Vars{
		"input_dir":   DefaultInputDir,
		"output_dir":  DefaultOutputDir,
		"threshold":   strconv.Itoa(DefaultThreshold),
		"chroma":      DefaultChroma,
		"metric":      DefaultMetric,
		"suffix":      DefaultSuffix,
		"workers":     strconv.Itoa(DefaultWorkers),
		"log_level":   DefaultLogLevel,
		"log_format":  DefaultLogFormat,
		"config_file": DefaultFile,
	}
}

// Save writes cfg to path as YAML, creating the parent directory if needed.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create config directory %q: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write config file %q: %w", path, err)
	}
	return nil
}

// Parse decodes a YAML configuration. Keys are checked against Config and only
// the keys present in the document are returned, keyed by their YAML name. A
// key without a value is an error: an unquoted "#ff00ff" is a YAML comment.
func Parse(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if values[key] == nil {
			return nil, fmt.Errorf("config key %q has no value (quote colors, as in %s: \"#ff00ff\")", key, key)
		}
	}
	return values, nil
}

// YAML is a kong.ConfigurationLoader. A flag named "input-dir" is resolved from
// the "input_dir" key.
func YAML(r io.Reader) (kong.Resolver, error) {
	values, err := Parse(r)
	if err != nil {
		return nil, err
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		raw, ok := values[strings.ReplaceAll(flag.Name, "-", "_")]
		if !ok || raw == nil {
			return nil, nil
		}
		return fmt.Sprint(raw), nil
	}), nil
}
