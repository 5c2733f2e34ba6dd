package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds mailcoach configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Data        DataConfig        `yaml:"data"`
	Submission  SubmissionConfig  `yaml:"submission"`
	Dictionary  DictionaryConfig  `yaml:"dictionary"`
	Translate   TranslateConfig   `yaml:"translate"`
	PracticeLog PracticeLogConfig `yaml:"practice_log"`
}

type ServerConfig struct {
	Addr                     string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
	MaxRequestBodyBytes      int64  `yaml:"max_request_body_bytes"`
	ReadHeaderTimeoutSeconds int    `yaml:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int    `yaml:"shutdown_timeout_seconds"`
}

type DataConfig struct {
	Scenarios  string `yaml:"scenarios"`  // JSON scenario catalog; empty = built-in
	Vocabulary string `yaml:"vocabulary"` // JSON vocabulary file; empty = in-memory
}

type SubmissionConfig struct {
	MinLength int `yaml:"min_length"` // runes required after trimming
}

type DictionaryConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MinIntervalMs  int    `yaml:"min_interval_ms"`
}

type TranslateConfig struct {
	Enabled bool `yaml:"enabled"`
	Tries   int  `yaml:"tries"`
	DelayMs int  `yaml:"delay_ms"`
}

type PracticeLogConfig struct {
	Path      string `yaml:"path"` // JSONL file; empty disables the log
	QueueSize int    `yaml:"queue_size"`
	Workers   int    `yaml:"workers"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                     ":8080",
			MaxRequestBodyBytes:      1 << 20,
			ReadHeaderTimeoutSeconds: 5,
			ShutdownTimeoutSeconds:   5,
		},
		Submission: SubmissionConfig{
			MinLength: 20,
		},
		Dictionary: DictionaryConfig{
			TimeoutSeconds: 10,
			MinIntervalMs:  500,
		},
		Translate: TranslateConfig{
			Tries:   2,
			DelayMs: 500,
		},
		PracticeLog: PracticeLogConfig{
			QueueSize: 256,
			Workers:   1,
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxRequestBodyBytes <= 0 {
		cfg.Server.MaxRequestBodyBytes = 1 << 20
	}
	if cfg.Server.ReadHeaderTimeoutSeconds <= 0 {
		cfg.Server.ReadHeaderTimeoutSeconds = 5
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 5
	}

	if cfg.Submission.MinLength <= 0 {
		cfg.Submission.MinLength = 20
	}

	if cfg.Dictionary.TimeoutSeconds <= 0 {
		cfg.Dictionary.TimeoutSeconds = 10
	}
	if cfg.Dictionary.MinIntervalMs <= 0 {
		cfg.Dictionary.MinIntervalMs = 500
	}

	if cfg.Translate.Tries <= 0 {
		cfg.Translate.Tries = 2
	}
	if cfg.Translate.DelayMs <= 0 {
		cfg.Translate.DelayMs = 500
	}

	if cfg.PracticeLog.QueueSize <= 0 {
		cfg.PracticeLog.QueueSize = 256
	}
	if cfg.PracticeLog.Workers <= 0 {
		cfg.PracticeLog.Workers = 1
	}
}
