package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/templay/internal/config"
)

// isolate points every config lookup at a fresh temp dir and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("TEMPLAY_CONFIG", "")
	t.Setenv("NO_COLOR", "1")
	return dir
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLIWithInput(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

// mustRun fails the test when the command errors and returns stdout.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res := runCLI(t, args...)
	require.NoError(t, res.err, "templay %s\nstderr: %s", strings.Join(args, " "), res.stderr)
	return res.stdout
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out := mustRun(t, "version")
	assert.Contains(t, out, "templay")
}

func TestRootFlagVersion(t *testing.T) {
	isolate(t)
	out := mustRun(t, "--version")
	assert.Contains(t, out, "templay")
	assert.Equal(t, cliVersionString()+"\n", out)
}

func TestRootWithoutArgsPrintsHelp(t *testing.T) {
	isolate(t)
	out := mustRun(t)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "templates")
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)
	res := runCLI(t, "--log-level", "loud", "config", "path")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown log level")
}

func TestInvalidLogFormat(t *testing.T) {
	isolate(t)
	res := runCLI(t, "--log-format", "xml", "config", "path")
	require.Error(t, res.err)
}

func TestConfigFileFromEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "env.json")
	writeFile(t, path, `{"version":1,"external_editor":{"command":"nano","args":""}}`)
	t.Setenv("TEMPLAY_CONFIG", path)

	assert.Equal(t, path+"\n", mustRun(t, "config", "path"))
	out := mustRun(t, "editor", "get", "-o", "json")
	assert.Contains(t, out, `"command": "nano"`)
}

func TestLoadEffectiveSurfacesMalformedUserFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	writeFile(t, path, "external_editor:\n  args: x\n")

	res := runCLI(t, "--config-file", path, "templates", "list")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, config.ErrMalformedConfig)
}
