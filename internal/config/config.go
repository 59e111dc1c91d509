package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/optics.report/internal/lom"
	"github.com/banshee-data/optics.report/internal/units"
)

// DefaultConfigPath is the path to the documented defaults file.
const DefaultConfigPath = "config/lom.defaults.json"

// Config holds the settings of the lom tools. Every field is optional: the
// Get* methods fall back to the defaults for fields left unset, so partial
// files are safe.
type Config struct {
	// Sensitivities
	SensitivityDir  *string `json:"sensitivity_dir,omitempty" yaml:"sensitivity_dir,omitempty"`
	SensitivityFile *string `json:"sensitivity_file,omitempty" yaml:"sensitivity_file,omitempty"`

	// Rigid body motion source
	Database          *string  `json:"database,omitempty" yaml:"database,omitempty"`
	M1Column          *string  `json:"m1_column,omitempty" yaml:"m1_column,omitempty"`
	M2Column          *string  `json:"m2_column,omitempty" yaml:"m2_column,omitempty"`
	SamplingFrequency *float64 `json:"sampling_frequency,omitempty" yaml:"sampling_frequency,omitempty"` // Hz

	// Statistics and reporting
	Window     *int    `json:"window,omitempty" yaml:"window,omitempty"` // trailing samples, 0 for all
	WfeExp     *int    `json:"wfe_exponent,omitempty" yaml:"wfe_exponent,omitempty"`
	AngleUnit  *string `json:"angle_unit,omitempty" yaml:"angle_unit,omitempty"`
	LengthUnit *string `json:"length_unit,omitempty" yaml:"length_unit,omitempty"`
	OutputDir  *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	LogLevel   *string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	Influx *InfluxConfig `json:"influx,omitempty" yaml:"influx,omitempty"`
}

// InfluxConfig locates the InfluxDB bucket metric series are written to.
type InfluxConfig struct {
	URL         string `json:"url" yaml:"url"`
	Token       string `json:"token" yaml:"token"`
	Org         string `json:"org" yaml:"org"`
	Bucket      string `json:"bucket" yaml:"bucket"`
	Measurement string `json:"measurement,omitempty" yaml:"measurement,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the value of VAR when it is set.
func expandEnvVars(content string) string {
	return envPattern.ReplaceAllStringFunc(content, func(match string) string {
		if value := os.Getenv(strings.Trim(match, "${}")); value != "" {
			return value
		}
		return match
	})
}

// Load reads a configuration file. JSON (.json) and YAML (.yaml, .yml) are
// accepted; ${VAR} references are expanded from the environment first.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := []byte(expandEnvVars(string(data)))

	cfg := Empty()
	if ext == ".json" {
		err = json.Unmarshal(expanded, cfg)
	} else {
		err = yaml.Unmarshal(expanded, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads environment variables from the given .env files. Missing
// files are skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.SamplingFrequency != nil && !(*c.SamplingFrequency > 0) {
		return fmt.Errorf("sampling_frequency must be positive, got %g", *c.SamplingFrequency)
	}
	if c.Window != nil && *c.Window < 0 {
		return fmt.Errorf("window must be non-negative, got %d", *c.Window)
	}
	if c.AngleUnit != nil && !units.IsValidAngle(*c.AngleUnit) {
		return fmt.Errorf("invalid angle_unit %q, want one of %s", *c.AngleUnit, units.GetValidAngleUnitsString())
	}
	if c.LengthUnit != nil && !units.IsValidLength(*c.LengthUnit) {
		return fmt.Errorf("invalid length_unit %q", *c.LengthUnit)
	}
	if c.Influx != nil && c.Influx.URL != "" && (c.Influx.Org == "" || c.Influx.Bucket == "") {
		return fmt.Errorf("incomplete influx configuration: org and bucket are required")
	}
	return nil
}

// GetSensitivityDir returns the sensitivity directory: the configured one,
// else the LOM environment variable, else the working directory.
func (c *Config) GetSensitivityDir() string {
	if c.SensitivityDir != nil && *c.SensitivityDir != "" {
		return *c.SensitivityDir
	}
	if dir := os.Getenv(lom.EnvSensitivityDir); dir != "" {
		return dir
	}
	return "."
}

// GetSensitivityFile returns the sensitivity file name or the default.
func (c *Config) GetSensitivityFile() string {
	if c.SensitivityFile == nil || *c.SensitivityFile == "" {
		return lom.DefaultSensitivityFile
	}
	return *c.SensitivityFile
}

// Loader returns the sensitivity loader described by the configuration.
func (c *Config) Loader() lom.Loader {
	l := lom.DefaultLoader()
	l.Dir = c.GetSensitivityDir()
	l.File = c.GetSensitivityFile()
	return l
}

// GetDatabase returns the database path or the default.
func (c *Config) GetDatabase() string {
	if c.Database == nil || *c.Database == "" {
		return "lom.db"
	}
	return *c.Database
}

// GetM1Column returns the M1 column label or the default.
func (c *Config) GetM1Column() string {
	if c.M1Column == nil || *c.M1Column == "" {
		return lom.DefaultM1Column
	}
	return *c.M1Column
}

// GetM2Column returns the M2 column label or the default.
func (c *Config) GetM2Column() string {
	if c.M2Column == nil || *c.M2Column == "" {
		return lom.DefaultM2Column
	}
	return *c.M2Column
}

// GetSamplingFrequency returns the sampling frequency override, 0 when unset.
func (c *Config) GetSamplingFrequency() float64 {
	if c.SamplingFrequency == nil {
		return 0
	}
	return *c.SamplingFrequency
}

// GetWindow returns the statistics window or the default of 90 s at 1 kHz.
func (c *Config) GetWindow() int {
	if c.Window == nil {
		return 90_000
	}
	return *c.Window
}

// GetWfeExponent returns the wavefront error exponent or the default (nm).
func (c *Config) GetWfeExponent() int {
	if c.WfeExp == nil {
		return -9
	}
	return *c.WfeExp
}

// GetAngleUnit returns the angle unit or the default.
func (c *Config) GetAngleUnit() string {
	if c.AngleUnit == nil {
		return units.Milliarc
	}
	return *c.AngleUnit
}

// GetLengthUnit returns the length unit or the default.
func (c *Config) GetLengthUnit() string {
	if c.LengthUnit == nil {
		return units.Nanometer
	}
	return *c.LengthUnit
}

// GetOutputDir returns the output directory or the default.
func (c *Config) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "."
	}
	return *c.OutputDir
}

// GetLogLevel returns the log level or the default.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}

// GetInflux returns the InfluxDB settings, nil when not configured.
func (c *Config) GetInflux() *InfluxConfig {
	if c.Influx == nil || c.Influx.URL == "" {
		return nil
	}
	in := *c.Influx
	if in.Measurement == "" {
		in.Measurement = "lom"
	}
	return &in
}
