package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// An HCL preset with a syntax error is guaranteed to panic during the
	// loading phase inside app.NewApp().
	invalidHCL := `
		instrument "broken" {
			node "kick" {
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "broken.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	args := []string{"--headless", filePath}
	out := &bytes.Buffer{}

	runErr := run(out, args)

	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to load preset"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_HeadlessPlayback(t *testing.T) {
	t.Parallel()

	presetJSON := `{
		"name": "beep",
		"triggerMode": "momentary",
		"nodes": {
			"voice": {"type": "Synth", "trigger": true, "settings": {"frequency": 440}}
		}
	}`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "beep.json")
	require.NoError(t, os.WriteFile(filePath, []byte(presetJSON), 0600))
	previewPath := filepath.Join(tempDir, "wave.json")

	args := []string{"--headless", "--play-for", "20ms", "--preview-out", previewPath, filePath}
	out := &bytes.Buffer{}

	require.NoError(t, run(out, args))

	preview, err := os.ReadFile(previewPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(preview), "["), "preview file should hold a JSON array")
}
