package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"octopusstream/pkg/config"
	"octopusstream/pkg/logging"
)

type commandContext struct {
	configFlag *string
	envFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOutput io.Writer
}

func newCommandContext(configFlag, envFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		envFlag:    envFlag,
		logOutput:  os.Stderr,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var envPaths []string
		if c.envFlag != nil && strings.TrimSpace(*c.envFlag) != "" {
			envPaths = append(envPaths, strings.TrimSpace(*c.envFlag))
		}
		if err := config.LoadEnv(envPaths...); err != nil {
			c.configErr = err
			return
		}

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.ApplyEnv(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Output.LogLevel,
		Format: cfg.Output.LogFormat,
		Output: c.logOutput,
	})
}
