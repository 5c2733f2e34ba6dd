package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if cfg.Server.MaxRequestBodyBytes <= 0 {
		return errors.New("server.max_request_body_bytes must be positive")
	}

	if cfg.Submission.MinLength <= 0 {
		return errors.New("submission.min_length must be positive")
	}

	if cfg.Dictionary.BaseURL != "" {
		u, err := url.Parse(cfg.Dictionary.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("dictionary.base_url is not a valid URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("dictionary.base_url must be http or https")
		}
	}
	if cfg.Dictionary.TimeoutSeconds <= 0 {
		return errors.New("dictionary.timeout_seconds must be positive")
	}

	if cfg.Translate.Enabled {
		if cfg.Translate.Tries <= 0 {
			return errors.New("translate.tries must be positive")
		}
		if cfg.Translate.DelayMs <= 0 {
			return errors.New("translate.delay_ms must be positive")
		}
	}

	if cfg.PracticeLog.Path != "" {
		if cfg.PracticeLog.QueueSize <= 0 {
			return fmt.Errorf("practice_log.queue_size must be positive, got %d", cfg.PracticeLog.QueueSize)
		}
		if cfg.PracticeLog.Workers <= 0 {
			return fmt.Errorf("practice_log.workers must be positive, got %d", cfg.PracticeLog.Workers)
		}
	}

	return nil
}
