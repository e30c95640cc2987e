package versioning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompt(t *testing.T, targetsDir, promptName, content string) {
	t.Helper()
	dir := filepath.Join(targetsDir, promptName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt.txt"), []byte(content), 0o644))
}

func TestInitAndLoad(t *testing.T) {
	m := NewManager(t.TempDir())

	meta, err := m.Init("summarizer", "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, InitialVersion, meta.CurrentVersion)
	assert.Equal(t, "dev@example.com", meta.Owner)
	require.Contains(t, meta.Versions, InitialVersion)
	assert.Equal(t, "Initial version", meta.Versions[InitialVersion].Changes)

	loaded, err := m.Load("summarizer")
	require.NoError(t, err)
	assert.Equal(t, meta.CurrentVersion, loaded.CurrentVersion)
}

func TestLoadMissing(t *testing.T) {
	m := NewManager(t.TempDir())

	_, err := m.Load("ghost")
	assert.ErrorIs(t, err, ErrNoMetadata)
}

func TestEnsureInitializesOnce(t *testing.T) {
	m := NewManager(t.TempDir())

	first, err := m.Ensure("summarizer", "dev@example.com")
	require.NoError(t, err)

	_, err = m.AddVersion("summarizer", "v1.1", "dev@example.com", "tighter wording")
	require.NoError(t, err)

	again, err := m.Ensure("summarizer", "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, "v1.1", again.CurrentVersion)
	assert.Equal(t, first.Owner, again.Owner)
}

func TestAddVersion(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Init("summarizer", "dev@example.com")
	require.NoError(t, err)

	meta, err := m.AddVersion("summarizer", "v1.1", "dev@example.com", "added constraints")
	require.NoError(t, err)
	assert.Equal(t, "v1.1", meta.CurrentVersion)
	assert.Equal(t, "added constraints", meta.Versions["v1.1"].Changes)

	_, err = m.AddVersion("summarizer", "v1.1", "dev@example.com", "again")
	assert.ErrorIs(t, err, ErrVersionExists)

	_, err = m.AddVersion("ghost", "v1.1", "dev@example.com", "no metadata")
	assert.ErrorIs(t, err, ErrNoMetadata)
}

func TestHistoryNewestFirst(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Init("summarizer", "dev@example.com")
	require.NoError(t, err)
	_, err = m.AddVersion("summarizer", "v1.1", "dev@example.com", "second")
	require.NoError(t, err)

	history, err := m.History("summarizer")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Same-day entries fall back to version order.
	assert.Equal(t, "v1.1", history[0].Version)
	assert.Equal(t, "v1.0", history[1].Version)
}

func TestPromptHashAndChangeDetection(t *testing.T) {
	targets := t.TempDir()
	m := NewManager(targets)
	writePrompt(t, targets, "summarizer", "Summarize {{.topic}}.")
	_, err := m.Init("summarizer", "dev@example.com")
	require.NoError(t, err)

	hash, err := m.PromptHash("summarizer")
	require.NoError(t, err)
	assert.Len(t, hash, 16)

	// Never marked seen: counts as changed.
	changed, err := m.HasChanged("summarizer")
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, m.MarkSeen("summarizer", hash))
	changed, err = m.HasChanged("summarizer")
	require.NoError(t, err)
	assert.False(t, changed)

	writePrompt(t, targets, "summarizer", "Summarize {{.topic}} briefly.")
	changed, err = m.HasChanged("summarizer")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestAutoVersion(t *testing.T) {
	targets := t.TempDir()
	m := NewManager(targets)
	writePrompt(t, targets, "summarizer", "v1 prompt")
	_, err := m.Init("summarizer", "dev@example.com")
	require.NoError(t, err)

	result, err := m.AutoVersion("summarizer", "dev@example.com", "first edit")
	require.NoError(t, err)
	assert.True(t, result.IsNewVersion)
	assert.Equal(t, "v1.1", result.Version)

	// No edit since: version stays put.
	result, err = m.AutoVersion("summarizer", "dev@example.com", "no-op")
	require.NoError(t, err)
	assert.False(t, result.IsNewVersion)
	assert.Equal(t, "v1.1", result.Version)

	writePrompt(t, targets, "summarizer", "v2 prompt")
	result, err = m.AutoVersion("summarizer", "dev@example.com", "rewrite")
	require.NoError(t, err)
	assert.True(t, result.IsNewVersion)
	assert.Equal(t, "v1.2", result.Version)
}

func TestIncrementVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.0", "v1.1"},
		{"v1.9", "v1.10"},
		{"v2.3", "v2.4"},
		{"v2", "v2.1"},
		{"", "v1.0"},
		{"1.0", "v1.0"},
		{"vX.Y", "v1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IncrementVersion(tt.in))
		})
	}
}
