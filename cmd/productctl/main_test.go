package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig creates a file-store configuration in a temp dir and returns its path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := "storage:\n  driver: file\n  file:\n    path: " + filepath.Join(dir, "products.json") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs productctl with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestInvoke(t *testing.T) {
	// given
	cfg := writeConfig(t)

	// when
	out, err := execute(t, `{"action":"add","data":{"name":"Pen","price":1.5,"category":"Stationery"}}`, "invoke", "--config", cfg)

	// then
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","product":{"id":1,"name":"Pen","price":1.5,"category":"Stationery"}}`, out)

	out, err = execute(t, `{"action":"list"}`, "invoke", "--config", cfg)
	require.NoError(t, err, "the table must survive between invocations")
	assert.JSONEq(t, `{"status":"success","products":[{"id":1,"name":"Pen","price":1.5,"category":"Stationery"}]}`, out)
}

func TestInvoke_FromFile(t *testing.T) {
	cfg := writeConfig(t)
	event := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(event, []byte(`{"action":"list"}`), 0o644))

	out, err := execute(t, "", "invoke", event, "--config", cfg)

	assert.ErrorIs(t, err, errActionFailed)
	assert.JSONEq(t, `{"status":"error","message":"No products found"}`, out)
}

func TestInvoke_ErrorStatus(t *testing.T) {
	testCases := []struct {
		name     string
		event    string
		expected string
	}{
		{name: "unknown action", event: `{"action":"purge"}`, expected: `{"status":"error","message":"Invalid action"}`},
		{name: "malformed event", event: `not json`, expected: `{"status":"error","message":"Request body must be a JSON object"}`},
		{name: "missing product", event: `{"action":"delete","data":{"id":3}}`, expected: `{"status":"error","message":"Product with ID 3 does not exist"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.event, "invoke", "--config", writeConfig(t))

			assert.ErrorIs(t, err, errActionFailed)
			assert.JSONEq(t, tc.expected, out)
		})
	}
}

func TestMigrate_RequiresSQLDriver(t *testing.T) {
	_, err := execute(t, "", "migrate", "--config", writeConfig(t))

	assert.EqualError(t, err, "migrate requires the sql storage driver, configured: file")
}
