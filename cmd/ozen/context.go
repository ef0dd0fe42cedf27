package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ozen/internal/config"
	"ozen/internal/services"
)

type commandContext struct {
	configFlag *string

	readOnce   sync.Once
	raw        *config.Config
	configPath string
	configSeen bool
	readErr    error

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// readConfig parses the config file once without validating it. Each call
// returns a fresh copy so callers can overlay flags independently.
func (c *commandContext) readConfig() (*config.Config, error) {
	c.readOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.raw, c.configPath, c.configSeen, c.readErr = config.Read(path)
	})
	if c.readErr != nil {
		return nil, configError(c.readErr)
	}
	cfg := *c.raw
	return &cfg, nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := c.readConfig()
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Finalize(); err != nil {
			c.configErr = configError(err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func configError(err error) error {
	return services.Wrap(services.ErrConfiguration, "config", "load", "Invalid configuration", err)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func formatSeconds(value float64) string {
	return fmt.Sprintf("%.2fs", value)
}
