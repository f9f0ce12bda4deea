package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/teal/ledger/lib/env"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/out"
)

// Config represents the engine and account the cli currently acts for.
type Config struct {
	Engine  string `json:"engine"`
	Account string `json:"account"`
}

const (
	// configKey the context.Context key to store the config.
	configKey ContextKey = "cli.config"
)

// WithConfig stores the config in the provided context.
func WithConfig(
	ctx context.Context,
	config *Config,
) context.Context {
	return context.WithValue(ctx, configKey, config)
}

// GetConfig returns the config currently stored in the context.
func GetConfig(
	ctx context.Context,
) *Config {
	return ctx.Value(configKey).(*Config)
}

// ConfigPath returns the config path for the current environment.
func ConfigPath(
	ctx context.Context,
) (*string, error) {
	path, err := homedir.Expand(
		fmt.Sprintf("~/.ledger/config-%s.json", env.Get(ctx).Environment))
	if err != nil {
		return nil, errors.Trace(err)
	}

	err = os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return nil, errors.Trace(err)
	}

	return &path, nil
}

// CurrentConfig retrieves the current config by reading ConfigPath.
func CurrentConfig(
	ctx context.Context,
) (*Config, error) {
	path, err := ConfigPath(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if _, err := os.Stat(*path); os.IsNotExist(err) {
		return nil, nil
	}

	raw, err := ioutil.ReadFile(*path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	var c Config
	err = json.Unmarshal(raw, &c)
	if err != nil {
		return nil, errors.Trace(err)
	}

	return &c, nil
}

// StoreConfig stores the config at ConfigPath.
func StoreConfig(
	ctx context.Context,
	config *Config,
) error {
	path, err := ConfigPath(ctx)
	if err != nil {
		return errors.Trace(err)
	}

	formatted, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}

	err = ioutil.WriteFile(*path, formatted, 0644)
	if err != nil {
		return errors.Trace(err)
	}

	out.Statf("[Storing config] file=%s\n", *path)

	return nil
}
