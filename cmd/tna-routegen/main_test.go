package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionAnswers = []string{
	"10", "aa:aa:aa:aa:aa:aa", "bb:bb:bb:bb:bb:bb", "10.0.0.1/32", // gNB link
	"office", "192.168.1.0/24", "23", "cc:cc:cc:cc:cc:cc", "dd:dd:dd:dd:dd:dd",
	"",
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestVersion(t *testing.T) {
	r := runCLI(t, "", "version")
	assert.Equal(t, ExitSuccess, r.code)
	assert.Contains(t, r.stdout, "Version:    dev")
}

func TestVersionIgnoresBrokenConfig(t *testing.T) {
	r := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Equal(t, ExitSuccess, r.code)
}

func TestUsageErrors(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"--root", root, "frobnicate"}},
		{name: "unknown flag", args: []string{"--root", root, "--frobnicate"}},
		{name: "unknown backend", args: []string{"--root", root, "--backend", "redis", "routes", "list"}},
		{name: "unknown log level", args: []string{"--root", root, "--log-level", "loud", "routes", "list"}},
		{name: "missing config", args: []string{"--config", filepath.Join(root, "nope.yaml"), "routes", "list"}},
		{name: "unknown template kind", args: []string{"--root", root, "templates", "show", "routes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, "", tt.args...)
			assert.Equal(t, ExitUsageError, r.code, r.stderr)
			assert.Contains(t, r.stderr, "Error:")
		})
	}
}

func TestCreateSessionAndInspect(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			root := t.TempDir()
			global := []string{"--root", root, "--backend", backend, "--log-level", "error"}
			cmd := func(args ...string) []string { return append(append([]string{}, global...), args...) }

			r := runCLI(t, strings.Join(sessionAnswers, "\n")+"\n", cmd("create")...)
			require.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Contains(t, r.stdout, "Enter nothing at any point to exit")
			assert.Contains(t, r.stdout, "Route created to 192.168.1.0/24 through port 2:3")

			r = runCLI(t, "", cmd("routes", "list")...)
			require.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Contains(t, r.stdout, "next-downlink-office.json")
			assert.Contains(t, r.stdout, "6 artifacts, next standard route uses ids 4 and 5")

			r = runCLI(t, "", cmd("routes", "list", "--pattern", "next-*")...)
			require.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Contains(t, r.stdout, "2 artifacts")
			assert.NotContains(t, r.stdout, "forward-uplink-office.json")

			r = runCLI(t, "", cmd("gnb", "show")...)
			require.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Contains(t, r.stdout, "GNB connected to port 1:0.")

			r = runCLI(t, "", cmd("gnb", "reset")...)
			require.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Contains(t, r.stdout, "gNB link configuration deleted.")

			r = runCLI(t, "", cmd("gnb", "show")...)
			require.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Contains(t, r.stdout, noLinkConfig)

			r = runCLI(t, "", cmd("audit", "list", "--limit", "0")...)
			require.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Contains(t, r.stdout, "link_config_reset")
			assert.Contains(t, r.stdout, "route_generated")
			assert.Contains(t, r.stdout, "session_created")
		})
	}
}

func TestCreateIsDefaultCommand(t *testing.T) {
	root := t.TempDir()
	r := runCLI(t, "\n", "--root", root, "--log-level", "error")
	assert.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "No config file was found for the gnb")
}

func TestCreateWritesFileLayout(t *testing.T) {
	root := t.TempDir()
	r := runCLI(t, strings.Join(sessionAnswers, "\n")+"\n", "--root", root, "--log-level", "error", "create")
	require.Equal(t, ExitSuccess, r.code, r.stderr)

	assert.FileExists(t, filepath.Join(root, "gnb.json"))
	assert.FileExists(t, filepath.Join(root, "saved", "filtering-uplink-office.json"))
	assert.FileExists(t, filepath.Join(root, "audit.log"))
}

func TestTemplateOverrides(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "model")
	require.NoError(t, os.MkdirAll(model, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(model, "forward.json"), []byte(`{"dst": "$0", "id": $1}`), 0644))

	r := runCLI(t, "", "--root", root, "templates", "show", "forward")
	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Equal(t, "== forward (2 arguments) ==\n{\"dst\": \"192.168.1.0/24\", \"id\": 2}\n", r.stdout)

	r = runCLI(t, "", "--root", root, "templates", "show")
	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "== filtering (2 arguments) ==")
	assert.Contains(t, r.stdout, "== next (4 arguments) ==")
}

func TestBrokenTemplateFailsCreate(t *testing.T) {
	root := t.TempDir()
	model := filepath.Join(root, "model")
	require.NoError(t, os.MkdirAll(model, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(model, "next.json"), []byte(`$0 $9`), 0644))

	r := runCLI(t, strings.Join(sessionAnswers, "\n")+"\n", "--root", root, "--log-level", "error", "create")
	assert.Equal(t, ExitOperationError, r.code)
	assert.Contains(t, r.stderr, "Error:")
	assert.NoFileExists(t, filepath.Join(root, "gnb.json"))
}
