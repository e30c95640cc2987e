package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/versioning"
)

// writeTarget creates a quick-mode mock target under targetsRoot whose single
// case passes when expectedKeyword appears in the echoed prompt.
func writeTarget(t *testing.T, targetsRoot, name, expectedKeyword string) string {
	t.Helper()

	dir := filepath.Join(targetsRoot, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	files := map[string]string{
		"prompt.txt": "Answer the question: {{.question}}",
		"cases.yaml": `- id: case-001
  inputs:
    question: "What is the capital of France?"
`,
		"expected.yaml": "case-001:\n  keywords:\n    - " + expectedKeyword + "\n",
		"config.yaml": `name: ` + name + `
config:
  mode: quick
  executor: mock
checks:
  - type: keyword_inclusion
`,
	}
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
	}
	return dir
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRunCommand_PassingTarget(t *testing.T) {
	root := t.TempDir()
	// The mock executor echoes the rendered prompt, so "capital" is present.
	dir := writeTarget(t, root, "qa-prompt", "capital")

	require.NoError(t, runCLI(t, "run", dir))

	// First run records the initial version without bumping it.
	version, err := versioning.NewManager(root).CurrentVersion("qa-prompt")
	require.NoError(t, err)
	assert.Equal(t, versioning.InitialVersion, version)
}

func TestRunCommand_FailingTargetExitsWithEvalFailure(t *testing.T) {
	root := t.TempDir()
	dir := writeTarget(t, root, "qa-prompt", "zanzibar")

	err := runCLI(t, "run", dir)
	require.Error(t, err)

	var evalErr *EvalFailureError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Message, "1 of 1 case(s) failed")
}

func TestRunCommand_SavesOutputJSON(t *testing.T) {
	root := t.TempDir()
	dir := writeTarget(t, root, "qa-prompt", "capital")
	out := filepath.Join(root, "results.json")

	require.NoError(t, runCLI(t, "run", dir, "--output", out))

	record, err := loadRecordFile(out)
	require.NoError(t, err)
	assert.Equal(t, "qa-prompt", record.PromptName)
	assert.Equal(t, 1, record.Summary.Passed)
}

func TestRunCommand_JUnitFormat(t *testing.T) {
	root := t.TempDir()
	dir := writeTarget(t, root, "qa-prompt", "capital")
	out := filepath.Join(root, "results.xml")

	require.NoError(t, runCLI(t, "run", dir, "--format", "junit", "--output", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<testsuites")
	assert.Contains(t, string(data), "qa-prompt")
}

func TestRunCommand_JUnitRequiresOutput(t *testing.T) {
	root := t.TempDir()
	dir := writeTarget(t, root, "qa-prompt", "capital")

	err := runCLI(t, "run", dir, "--format", "junit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --output")
}

func TestRunCommand_AutoVersionBumpsOnPromptEdit(t *testing.T) {
	root := t.TempDir()
	dir := writeTarget(t, root, "qa-prompt", "capital")

	require.NoError(t, runCLI(t, "run", dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt.txt"),
		[]byte("Answer concisely, naming the capital city: {{.question}}"), 0o644))
	require.NoError(t, runCLI(t, "run", dir))

	version, err := versioning.NewManager(root).CurrentVersion("qa-prompt")
	require.NoError(t, err)
	assert.Equal(t, "v1.1", version)
}

func TestRunCommand_UnknownTarget(t *testing.T) {
	err := runCLI(t, "run", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var evalErr *EvalFailureError
	assert.False(t, errors.As(err, &evalErr), "load errors are config errors, not eval failures")
}

func TestHistoryCommand(t *testing.T) {
	root := t.TempDir()
	dir := writeTarget(t, root, "qa-prompt", "capital")

	require.NoError(t, runCLI(t, "run", dir))
	require.NoError(t, runCLI(t, "history", dir))
}
