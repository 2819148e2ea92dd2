// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every env tag parsed by ParseEnv.
const Prefix = "POCKETDUEL_"

// ParseEnv loads configuration from POCKETDUEL_-prefixed environment
// variables. Struct tags omit the prefix: `env:"DB_PATH"` reads
// POCKETDUEL_DB_PATH.
func ParseEnv(target any) error {
	return ParseEnvWithPrefix(target, Prefix)
}

// ParseEnvWithPrefix loads configuration using an explicit prefix.
func ParseEnvWithPrefix(target any, prefix string) error {
	if target == nil {
		return errors.New("config target is required")
	}
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
