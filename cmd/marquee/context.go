package main

import (
	"strings"
	"sync"
	"time"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/metadata/omdb"
	"marquee/internal/notifications"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the shared logger lazily. Commands that only print to
// stdout never pay for log file setup.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// withStore opens the library database for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *library.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()
	return fn(cfg, store)
}

func (c *commandContext) newSearcher() (omdb.Searcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return omdb.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL,
		omdb.WithTimeout(time.Duration(cfg.OMDb.TimeoutSeconds)*time.Second))
}

func (c *commandContext) newNotifier() notifications.Service {
	cfg, err := c.ensureConfig()
	if err != nil {
		return notifications.NewService(&config.Config{})
	}
	return notifications.NewService(cfg)
}
