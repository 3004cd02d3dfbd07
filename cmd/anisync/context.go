package main

import (
	"fmt"
	"strings"

	"anisync/internal/config"
)

// commandContext resolves shared CLI state lazily: the configuration file is
// only loaded when a command actually needs the daemon address.
type commandContext struct {
	apiFlag    *string
	configFlag *string

	cfg    *config.Config
	client *apiClient
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{apiFlag: apiFlag, configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

// apiBase resolves the daemon base URL: the --api flag wins, otherwise the
// configured bind address is assumed reachable over plain HTTP.
func (c *commandContext) apiBase() (string, error) {
	if c.apiFlag != nil {
		if flag := strings.TrimSpace(*c.apiFlag); flag != "" {
			return strings.TrimRight(flag, "/"), nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return "http://" + cfg.Server.Bind, nil
}

func (c *commandContext) apiClient() (*apiClient, error) {
	if c.client != nil {
		return c.client, nil
	}
	base, err := c.apiBase()
	if err != nil {
		return nil, err
	}
	c.client = newAPIClient(base)
	return c.client, nil
}
