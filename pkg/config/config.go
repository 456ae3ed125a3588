// pkg/config/config.go - configuration settings for the launcher.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigName is looked up next to the launcher binary when no
// explicit --config path is given.
const DefaultConfigName = "tdlauncher.yaml"

// DebugEnvVar enables debug logging when set to 1, true or yes.
const DebugEnvVar = "TD_LAUNCHER_DEBUG"

// RegistryPath holds optional machine-wide overrides on Windows.
const RegistryPath = `SOFTWARE\TDLauncher\Config`

// Configuration holds the configurable options for the launcher in YAML format
type Configuration struct {
	ProductName        string `yaml:"ProductName"`
	DownloadBaseURL    string `yaml:"DownloadBaseURL"`
	CountdownSeconds   int    `yaml:"CountdownSeconds"`
	ApplicationsDir    string `yaml:"ApplicationsDir"` // macOS bundle scan root
	InspectorPath      string `yaml:"InspectorPath"`   // empty means platform default
	DownloadDir        string `yaml:"DownloadDir"`     // Windows installer destination, empty means cwd
	SampleDocument     string `yaml:"SampleDocument"`  // used when no document argument is given
	HTTPTimeoutMinutes int    `yaml:"HTTPTimeoutMinutes"`
	Debug              bool   `yaml:"Debug"`
	LogFile            string `yaml:"LogFile"`
	StructuredLog      bool   `yaml:"StructuredLog"`

	// Set at runtime, not persisted.
	ConfigPath string `yaml:"-"`
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig(exeDir string) *Configuration {
	return &Configuration{
		ProductName:        "TouchDesigner",
		DownloadBaseURL:    "https://download.derivative.ca",
		CountdownSeconds:   5,
		ApplicationsDir:    "/Applications",
		SampleDocument:     filepath.Join(exeDir, "test.toe"),
		HTTPTimeoutMinutes: 30,
	}
}

// LoadConfig loads the configuration from a YAML file. A missing file is not
// an error: defaults apply, then Windows registry overrides, then the
// environment.
func LoadConfig(path, exeDir string) (*Configuration, error) {
	cfg := GetDefaultConfig(exeDir)
	if path == "" {
		path = filepath.Join(exeDir, DefaultConfigName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
		cfg.ConfigPath = path
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	loadRegistryOverrides(cfg)
	cfg.ApplyEnvironment(os.Getenv)
	cfg.fillDefaults(exeDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvironment folds environment settings into the configuration.
func (c *Configuration) ApplyEnvironment(getenv func(string) string) {
	switch strings.ToLower(strings.TrimSpace(getenv(DebugEnvVar))) {
	case "1", "true", "yes":
		c.Debug = true
	}
}

// fillDefaults restores defaults for fields a config file blanked out.
func (c *Configuration) fillDefaults(exeDir string) {
	def := GetDefaultConfig(exeDir)
	if c.ProductName == "" {
		c.ProductName = def.ProductName
	}
	if c.DownloadBaseURL == "" {
		c.DownloadBaseURL = def.DownloadBaseURL
	}
	if c.ApplicationsDir == "" {
		c.ApplicationsDir = def.ApplicationsDir
	}
	if c.SampleDocument == "" {
		c.SampleDocument = def.SampleDocument
	}
	if c.HTTPTimeoutMinutes <= 0 {
		c.HTTPTimeoutMinutes = def.HTTPTimeoutMinutes
	}
	c.DownloadBaseURL = strings.TrimRight(c.DownloadBaseURL, "/")
}

// Validate rejects settings the launcher cannot work with.
func (c *Configuration) Validate() error {
	if strings.ContainsAny(c.ProductName, `./\ `) {
		return fmt.Errorf("invalid ProductName %q", c.ProductName)
	}
	if c.CountdownSeconds < 1 {
		return fmt.Errorf("CountdownSeconds must be at least 1, got %d", c.CountdownSeconds)
	}
	if !strings.HasPrefix(c.DownloadBaseURL, "http://") && !strings.HasPrefix(c.DownloadBaseURL, "https://") {
		return fmt.Errorf("DownloadBaseURL must be an http(s) URL, got %q", c.DownloadBaseURL)
	}
	return nil
}

// Countdown returns the auto-launch delay.
func (c *Configuration) Countdown() time.Duration {
	return time.Duration(c.CountdownSeconds) * time.Second
}

// HTTPTimeout returns the overall download timeout.
func (c *Configuration) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMinutes) * time.Minute
}

// DefaultLogFile picks the debug log location. App bundles run with "/" as
// their working directory, so their log goes to the user's Desktop.
func DefaultLogFile(isAppBundle bool, home, cwd string) string {
	if isAppBundle && home != "" {
		return filepath.Join(home, "Desktop", "td_launcher_debug.log")
	}
	return filepath.Join(cwd, "td_launcher_debug.log")
}
