package config

import (
	"testing"

	"userpoold/lib/triggers"

	"github.com/stretchr/testify/assert"
)

// clearEnv blanks every variable FromEnv reads, so defaults are
// deterministic regardless of the host environment. t.Setenv restores the
// prior value automatically once the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	names := []string{
		"USERPOOLD_DATA_DIR", "USERPOOLD_PORT", "USERPOOLD_LOG_LEVEL", "USERPOOLD_ISSUER_BASE",
		"USERPOOLD_S3_BUCKET", "USERPOOLD_S3_ENDPOINT", "USERPOOLD_S3_LOCAL",
	}
	for _, envName := range triggerEnvNames {
		names = append(names, envName)
	}
	for _, n := range names {
		t.Setenv(n, "")
	}
}

func Test_FromEnv_Defaults(t *testing.T) {
	// Arrange
	clearEnv(t)

	// Act
	cfg := FromEnv()

	// Assert
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "9229", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:9229", cfg.IssuerBase)
	assert.False(t, cfg.UsesS3())
	assert.Empty(t, cfg.TriggerFuncs)
}

func Test_FromEnv_OverridesFromEnvironment(t *testing.T) {
	// Arrange
	clearEnv(t)
	t.Setenv("USERPOOLD_DATA_DIR", "/tmp/userpoold")
	t.Setenv("USERPOOLD_PORT", "8080")
	t.Setenv("USERPOOLD_S3_BUCKET", "my-bucket")
	t.Setenv("USERPOOLD_S3_LOCAL", "TRUE")
	t.Setenv("USERPOOLD_TRIGGER_PRE_SIGN_UP", "arn:aws:lambda:local:presignup")

	// Act
	cfg := FromEnv()

	// Assert
	assert.Equal(t, "/tmp/userpoold", cfg.DataDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.UsesS3())
	assert.True(t, cfg.S3Local)
	assert.Equal(t, "arn:aws:lambda:local:presignup", cfg.TriggerFuncs[triggers.PreSignUp])
}
