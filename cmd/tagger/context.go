package main

import (
	"context"
	"os"
	"strings"
	"sync"

	"log/slog"

	"tagger/internal/catalog"
	"tagger/internal/codec"
	"tagger/internal/config"
	"tagger/internal/events"
	"tagger/internal/logging"
	"tagger/internal/tagger"
)

func userAgent() string {
	return "tagger/" + version + " (https://github.com/tagger/tagger)"
}

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			path = defaultConfigPath()
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/tagger/config.toml"
	}
	return "tagger.toml"
}

func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if c.verboseFlag != nil && *c.verboseFlag {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
}

// withController builds a full engine (config, logger, web service
// client, codec, controller), runs fn, and tears everything down.
func (c *commandContext) withController(fn func(cfg *config.Config, ctrl *tagger.Controller) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.newLogger(cfg)
	if err != nil {
		return err
	}

	client := catalog.NewWSClient(catalog.WSClientOptions{
		UserAgent: userAgent(),
		Logger:    logger,
	})
	defer client.Close()

	ctrl, err := tagger.New(tagger.Options{
		Config: cfg,
		Logger: logger,
		Client: client,
		Codec:  codec.New(),
		Events: events.NewLogSink(logger),
	})
	if err != nil {
		return err
	}
	if err := ctrl.Start(context.Background()); err != nil {
		return err
	}
	defer ctrl.Stop()

	return fn(cfg, ctrl)
}
