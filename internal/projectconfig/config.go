// Package projectconfig provides the ProjectConfig struct and loader for
// .arena.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".arena.yaml"

// maxSearchDepth bounds how many parent directories Load walks.
const maxSearchDepth = 10

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultServerPort = 3000
	DefaultServerHost = ""

	DriverSQLite = "sqlite"
	DriverFiles  = "files"

	DefaultStorageDriver = DriverSQLite
	DefaultStorageDSN    = ".arena/arena.db"
	DefaultResultsDir    = "results/"

	DefaultWorkflowTimeout = 30

	DefaultDeltaThreshold  = 0.1
	DefaultWinThreshold    = 0.1
	DefaultWeightEpsilon   = 0.01
	DefaultConfidenceLevel = 0.95
	DefaultBootstrapSeed   = int64(42)
)

// ServerConfig holds dashboard server settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Host           string   `yaml:"host,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	// PublicURL is the address the workflow engine posts results back to.
	PublicURL string `yaml:"public_url,omitempty"`
}

// StorageConfig selects where evaluations are read from.
type StorageConfig struct {
	Driver     string `yaml:"driver,omitempty"`
	DSN        string `yaml:"dsn,omitempty"`
	ResultsDir string `yaml:"results_dir,omitempty"`
}

// WorkflowConfig points at the external workflow engine.
type WorkflowConfig struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	Secret         string `yaml:"secret,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Timeout returns the webhook timeout as a duration.
func (w WorkflowConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// ComparisonConfig tunes the comparison engine.
type ComparisonConfig struct {
	DeltaThreshold  float64 `yaml:"delta_threshold,omitempty"`
	WinThreshold    float64 `yaml:"win_threshold,omitempty"`
	WeightEpsilon   float64 `yaml:"weight_epsilon,omitempty"`
	ConfidenceLevel float64 `yaml:"confidence_level,omitempty"`
	BootstrapSeed   *int64  `yaml:"bootstrap_seed,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .arena.yaml.
type ProjectConfig struct {
	Server     ServerConfig     `yaml:"server,omitempty"`
	Storage    StorageConfig    `yaml:"storage,omitempty"`
	Workflow   WorkflowConfig   `yaml:"workflow,omitempty"`
	Comparison ComparisonConfig `yaml:"comparison,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Server: ServerConfig{
			Port: DefaultServerPort,
			Host: DefaultServerHost,
		},
		Storage: StorageConfig{
			Driver:     DefaultStorageDriver,
			DSN:        DefaultStorageDSN,
			ResultsDir: DefaultResultsDir,
		},
		Workflow: WorkflowConfig{
			TimeoutSeconds: DefaultWorkflowTimeout,
		},
		Comparison: ComparisonConfig{
			DeltaThreshold:  DefaultDeltaThreshold,
			WinThreshold:    DefaultWinThreshold,
			WeightEpsilon:   DefaultWeightEpsilon,
			ConfidenceLevel: DefaultConfidenceLevel,
			BootstrapSeed:   int64Ptr(DefaultBootstrapSeed),
		},
	}
}

// Load finds .arena.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	if err := rejectExplicitZeros(data); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *ProjectConfig) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverFiles:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverSQLite, DriverFiles, c.Storage.Driver)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if l := c.Comparison.ConfidenceLevel; l <= 0 || l >= 1 {
		return fmt.Errorf("comparison.confidence_level must be in (0, 1), got %v", l)
	}
	for name, v := range map[string]float64{
		"comparison.delta_threshold": c.Comparison.DeltaThreshold,
		"comparison.win_threshold":   c.Comparison.WinThreshold,
		"comparison.weight_epsilon":  c.Comparison.WeightEpsilon,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}
	return nil
}

// comparisonKeys mirrors the comparison block with pointers so a value
// written as 0 can be told apart from an omitted one.
type comparisonKeys struct {
	Comparison struct {
		DeltaThreshold  *float64 `yaml:"delta_threshold"`
		WinThreshold    *float64 `yaml:"win_threshold"`
		WeightEpsilon   *float64 `yaml:"weight_epsilon"`
		ConfidenceLevel *float64 `yaml:"confidence_level"`
	} `yaml:"comparison"`
}

// rejectExplicitZeros fails on comparison values set to 0. mergeConfig
// treats 0 as unset, so without this check they would silently become
// the defaults.
func rejectExplicitZeros(data []byte) error {
	var keys comparisonKeys
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("parsing comparison block: %w", err)
	}
	for _, kv := range []struct {
		name string
		v    *float64
	}{
		{"comparison.delta_threshold", keys.Comparison.DeltaThreshold},
		{"comparison.win_threshold", keys.Comparison.WinThreshold},
		{"comparison.weight_epsilon", keys.Comparison.WeightEpsilon},
		{"comparison.confidence_level", keys.Comparison.ConfidenceLevel},
	} {
		if kv.v != nil && *kv.v == 0 {
			return fmt.Errorf("%s must be positive, got 0", kv.name)
		}
	}
	return nil
}

// findConfigFile walks up from dir looking for .arena.yaml.
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxSearchDepth; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.Host != "" {
		dst.Server.Host = src.Server.Host
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	if src.Server.PublicURL != "" {
		dst.Server.PublicURL = src.Server.PublicURL
	}

	// Storage
	if src.Storage.Driver != "" {
		dst.Storage.Driver = src.Storage.Driver
	}
	if src.Storage.DSN != "" {
		dst.Storage.DSN = src.Storage.DSN
	}
	if src.Storage.ResultsDir != "" {
		dst.Storage.ResultsDir = src.Storage.ResultsDir
	}

	// Workflow
	if src.Workflow.BaseURL != "" {
		dst.Workflow.BaseURL = src.Workflow.BaseURL
	}
	if src.Workflow.Secret != "" {
		dst.Workflow.Secret = src.Workflow.Secret
	}
	if src.Workflow.TimeoutSeconds != 0 {
		dst.Workflow.TimeoutSeconds = src.Workflow.TimeoutSeconds
	}

	// Comparison
	if src.Comparison.DeltaThreshold != 0 {
		dst.Comparison.DeltaThreshold = src.Comparison.DeltaThreshold
	}
	if src.Comparison.WinThreshold != 0 {
		dst.Comparison.WinThreshold = src.Comparison.WinThreshold
	}
	if src.Comparison.WeightEpsilon != 0 {
		dst.Comparison.WeightEpsilon = src.Comparison.WeightEpsilon
	}
	if src.Comparison.ConfidenceLevel != 0 {
		dst.Comparison.ConfidenceLevel = src.Comparison.ConfidenceLevel
	}
	if src.Comparison.BootstrapSeed != nil {
		dst.Comparison.BootstrapSeed = src.Comparison.BootstrapSeed
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
