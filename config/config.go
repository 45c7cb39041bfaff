// Package config loads logger settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philipp01105/syslogconsole/chunker"
	"github.com/philipp01105/syslogconsole/core"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("config: invalid")

// TransportType selects the handler fragments are delivered to
type TransportType string

const (
	TransportSyslog   TransportType = "syslog"
	TransportJournald TransportType = "journald"
	TransportKafka    TransportType = "kafka"
	TransportFile     TransportType = "file"
	TransportConsole  TransportType = "console"
)

type SyslogConfig struct {
	Network string `yaml:"network"`
	Addr    string `yaml:"addr"`
}

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type FileConfig struct {
	Filename       string        `yaml:"filename"`
	MaxSize        int64         `yaml:"max_size"`
	MaxBackups     int           `yaml:"max_backups"`
	RotateInterval time.Duration `yaml:"rotate_interval"`
}

type TransportConfig struct {
	Type   TransportType `yaml:"type"`
	Syslog SyslogConfig  `yaml:"syslog"`
	Kafka  KafkaConfig   `yaml:"kafka"`
	File   FileConfig    `yaml:"file"`
}

type AsyncConfig struct {
	Enabled      bool          `yaml:"enabled"`
	BufferSize   int           `yaml:"buffer_size"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the root of a syslogconsole YAML file
type Config struct {
	Domain      string                 `yaml:"domain"`
	Facility    string                 `yaml:"facility"`
	MaxFragment int                    `yaml:"max_fragment"`
	ErrorCheck  string                 `yaml:"error_check"`
	TTY         bool                   `yaml:"tty"`
	Persist     map[string]interface{} `yaml:"persist"`
	Transport   TransportConfig        `yaml:"transport"`
	Async       AsyncConfig            `yaml:"async"`
	Metrics     MetricsConfig          `yaml:"metrics"`
}

// New returns a configuration for domain with every default applied
func New(domain string) *Config {
	cfg := &Config{Domain: domain}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Facility == "" {
		c.Facility = core.FacilityLocal0.String()
	}
	if c.MaxFragment == 0 {
		c.MaxFragment = chunker.DefaultMaxFragment
	}
	if c.ErrorCheck == "" {
		c.ErrorCheck = core.LevelWarning.String()
	}
	if c.Transport.Type == "" {
		c.Transport.Type = TransportSyslog
	}
	if c.Transport.Kafka.WriteTimeout == 0 {
		c.Transport.Kafka.WriteTimeout = 10 * time.Second
	}
	if c.Async.BufferSize == 0 {
		c.Async.BufferSize = 1000
	}
	if c.Async.BlockTimeout == 0 {
		c.Async.BlockTimeout = 100 * time.Millisecond
	}
}

// Validate reports the first problem found, wrapped in ErrInvalid
func (c *Config) Validate() error {
	if c.Domain == "" {
		return fmt.Errorf("%w: domain is required", ErrInvalid)
	}
	if _, err := c.FacilityValue(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.ErrorCheckSeverity(); err != nil {
		return fmt.Errorf("%w: error_check: %v", ErrInvalid, err)
	}
	if c.MaxFragment <= 0 {
		return fmt.Errorf("%w: max_fragment must be positive, got %d", ErrInvalid, c.MaxFragment)
	}
	if c.Async.BufferSize < 0 {
		return fmt.Errorf("%w: async.buffer_size must not be negative", ErrInvalid)
	}

	switch c.Transport.Type {
	case TransportSyslog, TransportJournald, TransportConsole:
	case TransportKafka:
		if len(c.Transport.Kafka.Brokers) == 0 || c.Transport.Kafka.Topic == "" {
			return fmt.Errorf("%w: kafka transport needs brokers and topic", ErrInvalid)
		}
	case TransportFile:
		if c.Transport.File.Filename == "" {
			return fmt.Errorf("%w: file transport needs a filename", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, c.Transport.Type)
	}
	return nil
}

// FacilityValue parses the configured facility name
func (c *Config) FacilityValue() (core.Facility, error) {
	return core.ParseFacility(c.Facility)
}

// ErrorCheckSeverity parses the severity threshold for error normalization
func (c *Config) ErrorCheckSeverity() (core.Severity, error) {
	return core.ParseSeverity(c.ErrorCheck)
}
