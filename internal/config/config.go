// Package config resolves the batch run configuration with explicit
// priority order.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. Environment variables (AF3_*, DB_DIR, ALPHAFOLD_DIR)
//  2. YAML config file (af3queue.yaml in the working directory)
//  3. Hardcoded defaults
//
// There are no command-line flags: the runner is submitted as a batch job
// and every path is fixed before the pass starts. Missing required paths are
// a fatal configuration error, reported before any job is attempted.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the working directory.
const ConfigFileName = "af3queue.yaml"

// Defaults for optional settings.
const (
	DefaultJobTimeout = 4 * time.Hour
	DefaultDiagLimit  = 200
	ContainerImage    = "alphafold3.sif"
)

// ErrMissingPath marks a required path that was not supplied by any source.
// Use errors.Is to detect configuration failures as a class.
var ErrMissingPath = errors.New("required path not configured")

// Config holds every path and limit a batch run needs.
type Config struct {
	InputsDir  string `yaml:"inputs_dir"`  // fold input JSON documents, one per job
	OutputsDir string `yaml:"outputs_dir"` // permanent per-job output directories
	ScratchDir string `yaml:"scratch_dir"` // root for per-attempt scratch pairs
	ModelDir   string `yaml:"model_dir"`   // AF3 model parameters
	DBDir      string `yaml:"db_dir"`      // public sequence databases
	Container  string `yaml:"container"`   // apptainer image path

	JobTimeout time.Duration `yaml:"job_timeout"` // wall-clock bound per attempt
	DiagLimit  int           `yaml:"diag_limit"`  // captured stderr bound, display cells
}

// Load resolves configuration from af3queue.yaml (if present) and the
// environment, then validates it. The returned error wraps ErrMissingPath
// for each required path that no source supplied.
func Load() (*Config, error) {
	cfg, err := Resolve()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve merges defaults, file, and environment without validating. Tools
// that need only part of the configuration (the score extractor reads just
// the outputs dir) validate their own subset.
func Resolve() (*Config, error) {
	cfg := &Config{
		ScratchDir: os.TempDir(),
		JobTimeout: DefaultJobTimeout,
		DiagLimit:  DefaultDiagLimit,
	}

	if err := cfg.mergeFile(ConfigFileName); err != nil {
		return nil, err
	}
	cfg.mergeEnv()
	return cfg, nil
}

// mergeFile overlays values from a YAML file onto cfg. A missing file is not
// an error; a malformed one is.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if fileCfg.InputsDir != "" {
		c.InputsDir = fileCfg.InputsDir
	}
	if fileCfg.OutputsDir != "" {
		c.OutputsDir = fileCfg.OutputsDir
	}
	if fileCfg.ScratchDir != "" {
		c.ScratchDir = fileCfg.ScratchDir
	}
	if fileCfg.ModelDir != "" {
		c.ModelDir = fileCfg.ModelDir
	}
	if fileCfg.DBDir != "" {
		c.DBDir = fileCfg.DBDir
	}
	if fileCfg.Container != "" {
		c.Container = fileCfg.Container
	}
	if fileCfg.JobTimeout > 0 {
		c.JobTimeout = fileCfg.JobTimeout
	}
	if fileCfg.DiagLimit > 0 {
		c.DiagLimit = fileCfg.DiagLimit
	}
	return nil
}

// mergeEnv overlays environment variables, the highest-priority source.
// DB_DIR and ALPHAFOLD_DIR keep the names the cluster modules already export.
func (c *Config) mergeEnv() {
	setString(&c.InputsDir, "AF3_INPUTS_DIR")
	setString(&c.OutputsDir, "AF3_OUTPUTS_DIR")
	setString(&c.ScratchDir, "AF3_SCRATCH_DIR")
	setString(&c.ModelDir, "AF3_MODEL_DIR", "MODEL_DIR")
	setString(&c.DBDir, "DB_DIR")

	if dir := os.Getenv("ALPHAFOLD_DIR"); dir != "" {
		c.Container = filepath.Join(dir, ContainerImage)
	}
	setString(&c.Container, "AF3_CONTAINER")

	if v := os.Getenv("AF3_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.JobTimeout = d
		}
	}
	if v := os.Getenv("AF3_DIAG_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DiagLimit = n
		}
	}
}

// setString assigns the first non-empty environment value among keys.
func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*dst = v
			return
		}
	}
}

// Validate reports every required path missing from the resolved config so
// the operator can fix them all in one submission cycle.
func (c *Config) Validate() error {
	var errs []error
	for _, p := range []struct{ name, value string }{
		{"inputs_dir (AF3_INPUTS_DIR)", c.InputsDir},
		{"outputs_dir (AF3_OUTPUTS_DIR)", c.OutputsDir},
		{"model_dir (AF3_MODEL_DIR)", c.ModelDir},
		{"db_dir (DB_DIR)", c.DBDir},
		{"container (ALPHAFOLD_DIR)", c.Container},
	} {
		if p.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingPath, p.name))
		}
	}
	if c.JobTimeout <= 0 {
		errs = append(errs, fmt.Errorf("job_timeout must be positive, got %s", c.JobTimeout))
	}
	if c.DiagLimit <= 0 {
		errs = append(errs, fmt.Errorf("diag_limit must be positive, got %d", c.DiagLimit))
	}
	return errors.Join(errs...)
}
