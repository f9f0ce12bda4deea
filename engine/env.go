package engine

import (
	"context"

	"github.com/teal/ledger/lib/env"
)

const (
	// EnvCfgHost is the env config key for the engine host.
	EnvCfgHost env.ConfigKey = "host"
	// EnvCfgPort is the env config key for the engine port.
	EnvCfgPort env.ConfigKey = "port"
)

// DefaultPort is the default port by environment.
var DefaultPort = map[env.Environment]int64{
	env.Production: 2046,
	env.QA:         2047,
}

// GetHost retrieves the current host from the given context.
func GetHost(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgHost]
}

// GetPort retrieves the current port from the given context.
func GetPort(
	ctx context.Context,
) string {
	return env.Get(ctx).Config[EnvCfgPort]
}
