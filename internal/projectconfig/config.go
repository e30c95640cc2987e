// Package projectconfig provides the ProjectConfig struct and loader for
// .evalgate.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the project configuration file name that Load searches for.
const ConfigFile = ".evalgate.yaml"

// Default values for project configuration. These are the single source of
// truth; New() references them and no other code should duplicate them.
const (
	DefaultTargetsDir   = "targets/"
	DefaultResultsDir   = "results/"
	DefaultBaselinesDir = "results/baselines/"

	DefaultExecutor = "mock"
	DefaultModel    = "gpt-4o-mini"
	DefaultTimeout  = 300
	DefaultWorkers  = 4

	DefaultCacheDir = ".evalgate-cache"

	DefaultRegressionThreshold = 0.05
)

// PathsConfig holds directory paths for targets, results, and baselines.
type PathsConfig struct {
	Targets   string `yaml:"targets,omitempty"`
	Results   string `yaml:"results,omitempty"`
	Baselines string `yaml:"baselines,omitempty"`
}

// DefaultsConfig holds default execution parameters.
type DefaultsConfig struct {
	Executor   string `yaml:"executor,omitempty"`
	Model      string `yaml:"model,omitempty"`
	JudgeModel string `yaml:"judge_model,omitempty"`
	Timeout    int    `yaml:"timeout,omitempty"`
	Workers    int    `yaml:"workers,omitempty"`
	Mode       string `yaml:"mode,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// RegressionConfig holds baseline comparison settings.
type RegressionConfig struct {
	Threshold float64 `yaml:"threshold,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .evalgate.yaml.
type ProjectConfig struct {
	Paths      PathsConfig      `yaml:"paths,omitempty"`
	Defaults   DefaultsConfig   `yaml:"defaults,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	Regression RegressionConfig `yaml:"regression,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Targets:   DefaultTargetsDir,
			Results:   DefaultResultsDir,
			Baselines: DefaultBaselinesDir,
		},
		Defaults: DefaultsConfig{
			Executor:   DefaultExecutor,
			Model:      DefaultModel,
			JudgeModel: "",
			Timeout:    DefaultTimeout,
			Workers:    DefaultWorkers,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Regression: RegressionConfig{
			Threshold: DefaultRegressionThreshold,
		},
	}
}

// Load finds .evalgate.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", ConfigFile, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .evalgate.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFile)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Targets != "" {
		dst.Paths.Targets = src.Paths.Targets
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Baselines != "" {
		dst.Paths.Baselines = src.Paths.Baselines
	}

	// Defaults
	if src.Defaults.Executor != "" {
		dst.Defaults.Executor = src.Defaults.Executor
	}
	if src.Defaults.Model != "" {
		dst.Defaults.Model = src.Defaults.Model
	}
	if src.Defaults.JudgeModel != "" {
		dst.Defaults.JudgeModel = src.Defaults.JudgeModel
	}
	if src.Defaults.Timeout != 0 {
		dst.Defaults.Timeout = src.Defaults.Timeout
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if src.Defaults.Mode != "" {
		dst.Defaults.Mode = src.Defaults.Mode
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Regression
	if src.Regression.Threshold != 0 {
		dst.Regression.Threshold = src.Regression.Threshold
	}
}

func boolPtr(b bool) *bool {
	return &b
}
