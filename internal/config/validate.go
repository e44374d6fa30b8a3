package config

import "fmt"

// Validate checks configuration invariants after normalization. The OMDb API
// key is deliberately not required here: commands that never contact the
// provider (library listings, stats, export) must work without one, and the
// client constructor rejects an empty key when a lookup is actually needed.
func (c *Config) Validate() error {
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBatch() error {
	if c.Batch.RetryLimit < 0 {
		return fmt.Errorf("batch.retry_limit must not be negative, got %d", c.Batch.RetryLimit)
	}
	if c.Batch.RetryLimit > 10 {
		return fmt.Errorf("batch.retry_limit must be 10 or fewer, got %d", c.Batch.RetryLimit)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return fmt.Errorf("notifications.request_timeout must not be negative, got %d", c.Notifications.RequestTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
