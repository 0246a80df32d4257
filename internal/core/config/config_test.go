package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "True", "yes", "YES", "on", " on ", "On"} {
		assert.True(t, Truthy(s), "expected %q to be truthy", s)
	}
	for _, s := range []string{"", "0", "false", "no", "off", "2", "enabled", "truthy"} {
		assert.False(t, Truthy(s), "expected %q to be falsy", s)
	}
}

func writeTestConfig(t *testing.T, backend string) string {
	t.Helper()
	yaml := `
app:
  name: seasonal-cms
  env: test
  publicbaseurl: http://localhost:5173
  http:
    host: 127.0.0.1
    port: 0
log:
  level: debug
  json: false
jwt:
  secret: test-secret
  issuer: seasonal-cms
  accesstokenttlmin: 60
db:
  backend: ` + backend + `
  sqlitepath: ./data/test.db
`
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(yaml), 0o600))
	return p
}

func TestLoad_BackendFromFile(t *testing.T) {
	t.Setenv("SITE_USE_HOSTED", "")

	c := Load(writeTestConfig(t, "hosted"))
	assert.True(t, c.UseHosted())

	c = Load(writeTestConfig(t, "embedded"))
	assert.False(t, c.UseHosted())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SITE_USE_HOSTED", "yes")
	c := Load(writeTestConfig(t, "embedded"))
	assert.True(t, c.UseHosted())

	t.Setenv("SITE_USE_HOSTED", "off")
	c = Load(writeTestConfig(t, "hosted"))
	assert.False(t, c.UseHosted())
}

func TestLoad_DefaultsToEmbedded(t *testing.T) {
	t.Setenv("SITE_USE_HOSTED", "")
	c := Load(writeTestConfig(t, `""`))
	assert.False(t, c.UseHosted())
	assert.Equal(t, "embedded", c.DB.Backend)
}
