package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2555", c.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, c.DialTimeout)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
}

func TestLoad_JSONThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "plants.example:2555",
		"dial_timeout": "1s",
		"request_timeout": "2s"
	}`), 0o600))

	c, err := Load([]string{"-c", path, "-t", "7s"})
	require.NoError(t, err)
	assert.Equal(t, "plants.example:2555", c.ServerEndpointAddr)
	assert.Equal(t, time.Second, c.DialTimeout)
	assert.Equal(t, 7*time.Second, c.RequestTimeout)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]string{"-config", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	_, err = Load([]string{"-t", "later"})
	assert.Error(t, err)
}
