// Package versioning tracks prompt version history per target directory.
package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MetadataFile is the bookkeeping file inside each target directory.
const MetadataFile = ".metadata.yaml"

// InitialVersion is assigned when a target's metadata is first created.
const InitialVersion = "v1.0"

var (
	// ErrNoMetadata is returned when a target has no metadata file yet.
	ErrNoMetadata = errors.New("no metadata for target")
	// ErrVersionExists is returned when adding a version tag that is taken.
	ErrVersionExists = errors.New("version already exists")
	// ErrVersionUnknown is returned when updating a version that was never added.
	ErrVersionUnknown = errors.New("unknown version")
)

// VersionInfo describes one recorded version of a prompt.
type VersionInfo struct {
	Date    string `yaml:"date"`
	Author  string `yaml:"author"`
	Changes string `yaml:"changes"`
}

// Metadata is the state stored in a target's .metadata.yaml.
type Metadata struct {
	Owner          string                 `yaml:"owner"`
	CreatedAt      string                 `yaml:"created_at"`
	CurrentVersion string                 `yaml:"current_version"`
	LastSeenHash   string                 `yaml:"last_seen_hash,omitempty"`
	Versions       map[string]VersionInfo `yaml:"versions"`
}

// HistoryEntry is a version plus its tag, for sorted listings.
type HistoryEntry struct {
	Version string
	VersionInfo
}

// AutoVersionResult reports what AutoVersion decided.
type AutoVersionResult struct {
	Version      string
	IsNewVersion bool
	PromptHash   string
}

// Manager reads and writes prompt metadata under a targets directory.
type Manager struct {
	targetsDir string
}

// NewManager creates a manager rooted at targetsDir, or "targets" when empty.
func NewManager(targetsDir string) *Manager {
	if targetsDir == "" {
		targetsDir = "targets"
	}
	return &Manager{targetsDir: targetsDir}
}

func (m *Manager) metadataPath(promptName string) string {
	return filepath.Join(m.targetsDir, promptName, MetadataFile)
}

// Load reads a target's metadata. A missing file is ErrNoMetadata.
func (m *Manager) Load(promptName string) (*Metadata, error) {
	data, err := os.ReadFile(m.metadataPath(promptName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoMetadata, promptName)
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", promptName, err)
	}
	return &meta, nil
}

// Save writes a target's metadata, creating the directory if needed.
func (m *Manager) Save(promptName string, meta *Metadata) error {
	path := m.metadataPath(promptName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("serializing metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// Init creates fresh metadata for a target at v1.0.
func (m *Manager) Init(promptName, owner string) (*Metadata, error) {
	today := time.Now().Format("2006-01-02")
	meta := &Metadata{
		Owner:          owner,
		CreatedAt:      today,
		CurrentVersion: InitialVersion,
		Versions: map[string]VersionInfo{
			InitialVersion: {Date: today, Author: owner, Changes: "Initial version"},
		},
	}
	if err := m.Save(promptName, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// Ensure loads a target's metadata, initializing it if absent.
func (m *Manager) Ensure(promptName, owner string) (*Metadata, error) {
	meta, err := m.Load(promptName)
	if errors.Is(err, ErrNoMetadata) {
		return m.Init(promptName, owner)
	}
	return meta, err
}

// AddVersion records a new version and makes it current.
func (m *Manager) AddVersion(promptName, version, author, changes string) (*Metadata, error) {
	meta, err := m.Load(promptName)
	if err != nil {
		return nil, err
	}

	if _, taken := meta.Versions[version]; taken {
		return nil, fmt.Errorf("%w: %s", ErrVersionExists, version)
	}

	if meta.Versions == nil {
		meta.Versions = map[string]VersionInfo{}
	}
	meta.Versions[version] = VersionInfo{
		Date:    time.Now().Format("2006-01-02"),
		Author:  author,
		Changes: changes,
	}
	meta.CurrentVersion = version

	if err := m.Save(promptName, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// CurrentVersion returns the target's current version tag.
func (m *Manager) CurrentVersion(promptName string) (string, error) {
	meta, err := m.Load(promptName)
	if err != nil {
		return "", err
	}
	return meta.CurrentVersion, nil
}

// History returns the recorded versions, newest date first.
func (m *Manager) History(promptName string) ([]HistoryEntry, error) {
	meta, err := m.Load(promptName)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(meta.Versions))
	for version, info := range meta.Versions {
		entries = append(entries, HistoryEntry{Version: version, VersionInfo: info})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Version > entries[j].Version
	})
	return entries, nil
}

// PromptHash hashes the target's prompt template. The first 16 hex digits of
// the sha256 are enough to detect edits.
func (m *Manager) PromptHash(promptName string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.targetsDir, promptName, "prompt.txt"))
	if err != nil {
		return "", fmt.Errorf("reading prompt template: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16], nil
}

// HasChanged reports whether the prompt differs from the last recorded hash.
// A target with no recorded hash counts as changed.
func (m *Manager) HasChanged(promptName string) (bool, error) {
	currentHash, err := m.PromptHash(promptName)
	if err != nil {
		return false, err
	}

	meta, err := m.Load(promptName)
	if err != nil {
		return false, err
	}
	if meta.LastSeenHash == "" {
		return true, nil
	}
	return currentHash != meta.LastSeenHash, nil
}

// MarkSeen records the current prompt hash as seen.
func (m *Manager) MarkSeen(promptName, promptHash string) error {
	meta, err := m.Load(promptName)
	if err != nil {
		return err
	}
	meta.LastSeenHash = promptHash
	return m.Save(promptName, meta)
}

// AutoVersion bumps the version when the prompt changed since it was last
// seen, and returns the current version unchanged otherwise.
func (m *Manager) AutoVersion(promptName, author, changes string) (*AutoVersionResult, error) {
	meta, err := m.Load(promptName)
	if err != nil {
		return nil, err
	}

	promptHash, err := m.PromptHash(promptName)
	if err != nil {
		return nil, err
	}

	changed, err := m.HasChanged(promptName)
	if err != nil {
		return nil, err
	}

	current := meta.CurrentVersion
	if current == "" {
		current = InitialVersion
	}

	if !changed {
		return &AutoVersionResult{Version: current, PromptHash: promptHash}, nil
	}

	next := IncrementVersion(current)
	if _, err := m.AddVersion(promptName, next, author, changes); err != nil {
		return nil, err
	}
	if err := m.MarkSeen(promptName, promptHash); err != nil {
		return nil, err
	}

	return &AutoVersionResult{Version: next, IsNewVersion: true, PromptHash: promptHash}, nil
}

// IncrementVersion bumps the minor component: v1.0 -> v1.1, v1.9 -> v1.10.
// Anything unparseable resets to v1.0.
func IncrementVersion(version string) string {
	if !strings.HasPrefix(version, "v") {
		return InitialVersion
	}

	parts := strings.Split(version[1:], ".")
	switch len(parts) {
	case 2:
		major, err1 := strconv.Atoi(parts[0])
		minor, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil {
			return fmt.Sprintf("v%d.%d", major, minor+1)
		}
	case 1:
		if major, err := strconv.Atoi(parts[0]); err == nil {
			return fmt.Sprintf("v%d.1", major)
		}
	}

	return InitialVersion
}
