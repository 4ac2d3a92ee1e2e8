package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces the environment variables, e.g. ANCHOR_HTTP_ADDR.
const EnvPrefix = "ANCHOR"

// envFile is loaded into the process environment before the overlay.
// Variables already set are not overridden.
var envFile = ".env"

// parseEnv overlays ANCHOR_* variables onto config. Unset variables leave
// the current value in place.
func parseEnv(config *Config) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		panic(err)
	}
}
