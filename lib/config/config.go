// Package config reads the daemon's runtime configuration from environment
// variables, the same "env var with a local default" style the teacher
// uses for its own Lambda environment configuration.
package config

import (
	"os"
	"strings"

	"userpoold/lib/triggers"
)

// Config is the daemon's full runtime configuration.
type Config struct {
	DataDir      string
	Port         string
	LogLevel     string
	IssuerBase   string
	TriggerFuncs map[triggers.Name]string
	S3Bucket     string
	S3Endpoint   string
	S3Local      bool
}

var triggerEnvNames = map[triggers.Name]string{
	triggers.PreSignUp:           "USERPOOLD_TRIGGER_PRE_SIGN_UP",
	triggers.PostConfirmation:    "USERPOOLD_TRIGGER_POST_CONFIRMATION",
	triggers.PostAuthentication:  "USERPOOLD_TRIGGER_POST_AUTHENTICATION",
	triggers.UserMigration:       "USERPOOLD_TRIGGER_USER_MIGRATION",
	triggers.CustomMessage:       "USERPOOLD_TRIGGER_CUSTOM_MESSAGE",
	triggers.PreTokenGeneration:  "USERPOOLD_TRIGGER_PRE_TOKEN_GENERATION",
}

// FromEnv builds a Config from the process environment, applying defaults
// for anything unset.
func FromEnv() Config {
	cfg := Config{
		DataDir:    getEnv("USERPOOLD_DATA_DIR", "./data"),
		Port:       getEnv("USERPOOLD_PORT", "9229"),
		LogLevel:   getEnv("USERPOOLD_LOG_LEVEL", "info"),
		IssuerBase: getEnv("USERPOOLD_ISSUER_BASE", "http://localhost:9229"),
		S3Bucket:   os.Getenv("USERPOOLD_S3_BUCKET"),
		S3Endpoint: os.Getenv("USERPOOLD_S3_ENDPOINT"),
		S3Local:    strings.EqualFold(os.Getenv("USERPOOLD_S3_LOCAL"), "true"),
	}

	cfg.TriggerFuncs = map[triggers.Name]string{}
	for name, envName := range triggerEnvNames {
		if fn := os.Getenv(envName); fn != "" {
			cfg.TriggerFuncs[name] = fn
		}
	}
	return cfg
}

// UsesS3 reports whether the daemon should back its DataStores with S3
// instead of the local filesystem.
func (c Config) UsesS3() bool { return c.S3Bucket != "" }

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
