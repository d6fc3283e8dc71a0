package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, post ,PUT")
	assert.True(t, m["GET"])
	assert.True(t, m["POST"])
	assert.True(t, m["PUT"])
	assert.False(t, m["DELETE"])

	assert.Empty(t, parseMethods(" , ,"))
}

func TestParseDur(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseDur("30s"))
	assert.Equal(t, 2*time.Minute, parseDur("2m"))
	// invalid input falls back to one second
	assert.Equal(t, time.Second, parseDur("nonsense"))
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TEST_FLAG", "yes")
	assert.True(t, envBool("TEST_FLAG", false))

	t.Setenv("TEST_FLAG", "off")
	assert.False(t, envBool("TEST_FLAG", true))

	t.Setenv("TEST_FLAG", "maybe")
	assert.True(t, envBool("TEST_FLAG", true))

	assert.False(t, envBool("TEST_FLAG_UNSET", false))
}

func TestEnvDur(t *testing.T) {
	t.Setenv("TEST_DUR", "45s")
	assert.Equal(t, 45*time.Second, envDur("TEST_DUR", time.Minute))

	t.Setenv("TEST_DUR", "bogus")
	assert.Equal(t, time.Minute, envDur("TEST_DUR", time.Minute))
}

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "tours")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "30")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("DEFAULT_TIMEZONE", "")

	cfg := Load()
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 30, cfg.RefreshTTLDays)
	assert.Equal(t, 10, cfg.BcryptCost)
	// timezone falls back when DEFAULT_TIMEZONE is unset
	assert.Equal(t, "Europe/Rome", cfg.DefaultTimezone)
}
