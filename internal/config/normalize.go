package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOMDb()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	expand := func(field *string, name string) error {
		if strings.TrimSpace(*field) == "" {
			return fmt.Errorf("paths.%s must not be empty", name)
		}
		expanded, err := ExpandPath(*field)
		if err != nil {
			return fmt.Errorf("paths.%s: %w", name, err)
		}
		*field = expanded
		return nil
	}
	if err := expand(&c.Paths.DataDir, "data_dir"); err != nil {
		return err
	}
	if err := expand(&c.Paths.LogDir, "log_dir"); err != nil {
		return err
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeOMDb() {
	c.OMDb.APIKey = strings.TrimSpace(c.OMDb.APIKey)
	c.OMDb.BaseURL = strings.TrimRight(strings.TrimSpace(c.OMDb.BaseURL), "/")
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = defaultOMDbBaseURL
	}
	if c.OMDb.TimeoutSeconds <= 0 {
		c.OMDb.TimeoutSeconds = defaultOMDbTimeoutSeconds
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.RetryDelayMS < 0 {
		c.Batch.RetryDelayMS = 0
	}
	if c.Batch.ItemDelayMS < 0 {
		c.Batch.ItemDelayMS = 0
	}
	if c.Batch.MaxStorageFailures <= 0 {
		c.Batch.MaxStorageFailures = defaultMaxStorageFailures
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
