package settings

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Flag names shared by the command line and the config file.
const (
	FlagURI        = "uri"
	FlagSchemas    = "schemas"
	FlagConfig     = "config"
	FlagLogFile    = "logfile"
	FlagDebug      = "debug"
	FlagVerbose    = "verbose"
	FlagTimeout    = "timeout"
	DefaultURI     = "mongodb://127.0.0.1:27017"
	DefaultTimeout = 10 * time.Second
)

var ErrInvalidSettings = errors.New("invalid settings")

type Arguments struct {
	// MongoDB connection string
	URI string `yaml:"uri"`

	// YAML file declaring the schemas
	SchemaFile string `yaml:"schemas"`

	// Optional YAML file holding any of these settings
	ConfigFile string `yaml:"-"`

	LogFile string `yaml:"logFile"`

	// Development logging at debug level
	Debug bool `yaml:"debug"`

	// Strongly verbose logging
	Verbose bool `yaml:"verbose"`

	// Upper bound for connecting and running one command
	Timeout time.Duration `yaml:"timeout"`
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the process-wide settings instance.
func GetSettings() *Arguments {
	once.Do(func() {
		instance = &Arguments{
			URI:     DefaultURI,
			Timeout: DefaultTimeout,
		}
	})
	return instance
}

// LoadConfigFile reads settings from a YAML file. Unknown keys are an error.
func LoadConfigFile(path string) (Arguments, error) {
	var cfg Arguments

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("could not open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyConfig copies non-zero values from cfg into a, except for settings
// whose flag was set explicitly on the command line.
func (a *Arguments) ApplyConfig(cfg Arguments, changed func(flag string) bool) {
	if cfg.URI != "" && !changed(FlagURI) {
		a.URI = cfg.URI
	}
	if cfg.SchemaFile != "" && !changed(FlagSchemas) {
		a.SchemaFile = cfg.SchemaFile
	}
	if cfg.LogFile != "" && !changed(FlagLogFile) {
		a.LogFile = cfg.LogFile
	}
	if cfg.Debug && !changed(FlagDebug) {
		a.Debug = true
	}
	if cfg.Verbose && !changed(FlagVerbose) {
		a.Verbose = true
	}
	if cfg.Timeout != 0 && !changed(FlagTimeout) {
		a.Timeout = cfg.Timeout
	}
}

// Validate checks the settings and returns an error if invalid
func (a *Arguments) Validate() error {
	if a.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidSettings, a.Timeout)
	}

	if a.SchemaFile != "" {
		info, err := os.Stat(a.SchemaFile)
		if err != nil {
			return fmt.Errorf("%w: could not access schema file: %v", ErrInvalidSettings, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: schema file path is a directory: %s", ErrInvalidSettings, a.SchemaFile)
		}
	}

	return nil
}
