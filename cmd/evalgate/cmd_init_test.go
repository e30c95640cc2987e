package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/dataset"
	"github.com/evalgate/evalgate/internal/versioning"
)

func TestInitCommand_CreatesTargetStructure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-prompt")

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(target, "prompt.txt"))
	assert.FileExists(t, filepath.Join(target, "cases.yaml"))
	assert.FileExists(t, filepath.Join(target, "expected.yaml"))
	assert.FileExists(t, filepath.Join(target, "config.yaml"))
	assert.FileExists(t, filepath.Join(target, versioning.MetadataFile))

	output := buf.String()
	assert.Contains(t, output, "Initialized target my-prompt")
	assert.Contains(t, output, "prompt.txt")
	assert.Contains(t, output, "config.yaml")

	// The scaffolded target must load cleanly.
	loaded, err := dataset.LoadTarget(target)
	require.NoError(t, err)
	assert.Equal(t, "my-prompt", loaded.Suite.Name)
	assert.NotEmpty(t, loaded.Cases)
	require.NoError(t, loaded.Suite.Validate())

	// And the initial version must be recorded.
	version, err := versioning.NewManager(dir).CurrentVersion("my-prompt")
	require.NoError(t, err)
	assert.Equal(t, versioning.InitialVersion, version)
}

func TestInitCommand_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-prompt")

	require.NoError(t, os.MkdirAll(target, 0o755))
	customContent := "My custom prompt: {{.request}}\n"
	require.NoError(t, os.WriteFile(filepath.Join(target, "prompt.txt"), []byte(customContent), 0o644))

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(target, "prompt.txt"))
	require.NoError(t, err)
	assert.Equal(t, customContent, string(data))
	assert.Contains(t, buf.String(), "exists, skipped")
}

func TestInitCommand_RejectsBadName(t *testing.T) {
	cmd := newInitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{".."})
	assert.Error(t, cmd.Execute())
}
