package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/regression"
)

func TestBaselineSetListShowDelete(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	dir := writeTarget(t, root, "qa-prompt", "capital")

	require.NoError(t, runCLI(t, "baseline", "set", dir, "--version", "v1.0", "--note", "first baseline"))
	assert.FileExists(t, filepath.Join(root, "results", "baselines", "qa-prompt", "v1.0.json"))

	require.NoError(t, runCLI(t, "baseline", "list", "qa-prompt"))
	require.NoError(t, runCLI(t, "baseline", "show", "qa-prompt", "v1.0"))
	require.NoError(t, runCLI(t, "baseline", "delete", "qa-prompt", "v1.0"))

	store := regression.NewStore(filepath.Join(root, "results", "baselines"))
	_, err := store.Load("qa-prompt", "v1.0")
	assert.ErrorIs(t, err, regression.ErrNotFound)
}

func TestBaselineSetFromRecordFile(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	dir := writeTarget(t, root, "qa-prompt", "capital")
	out := filepath.Join(root, "results.json")

	require.NoError(t, runCLI(t, "run", dir, "--output", out))
	require.NoError(t, runCLI(t, "baseline", "set", dir, "--from", out))

	store := regression.NewStore(filepath.Join(root, "results", "baselines"))
	baseline, err := store.Load("qa-prompt", regression.DefaultVersion)
	require.NoError(t, err)
	assert.Equal(t, "qa-prompt", baseline.PromptName)
}

func TestCompareCommand_NoRegression(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	dir := writeTarget(t, root, "qa-prompt", "capital")

	require.NoError(t, runCLI(t, "baseline", "set", dir))
	require.NoError(t, runCLI(t, "compare", dir))
}

func TestCompareCommand_DetectsRegression(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	dir := writeTarget(t, root, "qa-prompt", "capital")

	require.NoError(t, runCLI(t, "baseline", "set", dir))

	// Break the expectation so the case now fails.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expected.yaml"),
		[]byte("case-001:\n  keywords:\n    - zanzibar\n"), 0o644))

	err := runCLI(t, "compare", dir)
	require.Error(t, err)

	var evalErr *EvalFailureError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Message, "regression detected")
}

func TestCompareCommand_MissingBaseline(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	dir := writeTarget(t, root, "qa-prompt", "capital")

	err := runCLI(t, "compare", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, regression.ErrNotFound))
}

func TestRunCommand_BaselineGate(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	dir := writeTarget(t, root, "qa-prompt", "capital")

	require.NoError(t, runCLI(t, "run", dir, "--save-baseline", "v1.0"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "expected.yaml"),
		[]byte("case-001:\n  keywords:\n    - zanzibar\n"), 0o644))

	err := runCLI(t, "run", dir, "--baseline", "v1.0")
	require.Error(t, err)

	var evalErr *EvalFailureError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Message, "regression detected")
}
