package configuration

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")
	t.Setenv("DEFINITIONS_FILE", "/tmp/defs.json")
	t.Setenv("DISABLE_HISTORY", "true")

	config, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", config.ServerAddress)
	assert.Equal(t, "/tmp/defs.json", config.DefinitionsFile)
	assert.True(t, config.DisableHistory)
}

func TestNewFromEnvDefaults(t *testing.T) {
	config, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", config.ServerAddress)
}

func writeDefinitions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "definitions.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefinitions(t *testing.T) {
	path := writeDefinitions(t, `[
		{"name": "Fork", "url": "/api/fork", "method": "POST", "status_code": 200,
		 "json": {"id": "fork101"}},
		{"name": "Ping", "url": "/ping", "method": "GET", "status_code": 200, "text": "pong"}
	]`)

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "Fork", defs[0].Name())
	assert.Equal(t, "POST", defs[0].Method())
	assert.Equal(t, 200, defs[0].StatusCode())
	assert.Equal(t, map[string]interface{}{"id": "fork101"}, defs[0].JSON())

	assert.Equal(t, "Ping", defs[1].Name())
	assert.Equal(t, "pong", defs[1].Text())
}

func TestLoadDefinitionsRejectsWrongTypes(t *testing.T) {
	path := writeDefinitions(t, `[{"name": "Bad", "url": "/x", "method": 200}]`)

	_, err := LoadDefinitions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `the "method" attribute of endpoint kind "Bad" must be of type string`)
}

func TestLoadDefinitionsMissingFile(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read definitions file")
}

func TestLoadDefinitionsInvalidJSON(t *testing.T) {
	path := writeDefinitions(t, `{not json`)

	_, err := LoadDefinitions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse definitions file")
}
