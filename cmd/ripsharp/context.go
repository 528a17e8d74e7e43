package main

import (
	"strings"
	"sync"

	"github.com/mapitman/ripsharp/internal/config"
)

// commandContext resolves configuration once per invocation and shares the
// result across subcommands.
type commandContext struct {
	configFlag *string

	once sync.Once
	cfg  *config.Config
	path string
	err  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		flagValue := ""
		if c.configFlag != nil {
			flagValue = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(flagValue)
		if err != nil {
			c.err = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.err = err
			return
		}
		c.cfg = cfg
		c.path = resolved
	})
	return c.cfg, c.err
}

// configPath reports where configuration was (or would be) read from. Only
// meaningful after ensureConfig has succeeded.
func (c *commandContext) configPath() string {
	return c.path
}
