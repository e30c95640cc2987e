package regression

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/evalgate/evalgate/internal/models"
)

// DefaultVersion is the version tag used when none is given.
const DefaultVersion = "latest"

// DefaultBaselineDir is where baselines live relative to the project root.
const DefaultBaselineDir = "results/baselines"

// ErrNotFound is returned when the requested baseline does not exist.
var ErrNotFound = errors.New("baseline not found")

// Baseline is a stored run with its bookkeeping envelope.
type Baseline struct {
	PromptName string            `json:"prompt_name"`
	Version    string            `json:"version"`
	CreatedAt  time.Time         `json:"created_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Results    models.RunRecord  `json:"results"`
}

// BaselineInfo is a directory listing entry.
type BaselineInfo struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	PassRate  float64   `json:"pass_rate"`
	Path      string    `json:"file"`
}

// Store reads and writes baselines under a root directory, one file per
// version at <root>/<prompt>/<version>.json.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, or DefaultBaselineDir when empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultBaselineDir
	}
	return &Store{root: dir}
}

// Path returns the file a prompt/version pair maps to.
func (s *Store) Path(promptName, version string) string {
	if version == "" {
		version = DefaultVersion
	}
	return filepath.Join(s.root, promptName, version+".json")
}

// Save writes a run as the baseline for the given version.
func (s *Store) Save(promptName string, run *models.RunRecord, version string, metadata map[string]string) (string, error) {
	if version == "" {
		version = DefaultVersion
	}

	baseline := Baseline{
		PromptName: promptName,
		Version:    version,
		CreatedAt:  time.Now().UTC(),
		Metadata:   metadata,
		Results:    *run,
	}

	path := s.Path(promptName, version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating baseline directory: %w", err)
	}

	data, err := json.MarshalIndent(baseline, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing baseline: %w", err)
	}

	return path, nil
}

// Load reads a baseline. A missing file is ErrNotFound; a file that exists
// but will not parse is a hard error, not a silent miss.
func (s *Store) Load(promptName, version string) (*Baseline, error) {
	path := s.Path(promptName, version)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading baseline: %w", err)
	}

	var baseline Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, fmt.Errorf("parsing baseline %s: %w", path, err)
	}

	return &baseline, nil
}

// List returns the baselines stored for a prompt, newest first. Files that
// fail to parse are skipped.
func (s *Store) List(promptName string) ([]BaselineInfo, error) {
	dir := filepath.Join(s.root, promptName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading baseline directory: %w", err)
	}

	var infos []BaselineInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var baseline Baseline
		if err := json.Unmarshal(data, &baseline); err != nil {
			continue
		}
		infos = append(infos, BaselineInfo{
			Version:   baseline.Version,
			CreatedAt: baseline.CreatedAt,
			PassRate:  baseline.Results.Summary.PassRate,
			Path:      path,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes a stored baseline.
func (s *Store) Delete(promptName, version string) error {
	path := s.Path(promptName, version)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("deleting baseline: %w", err)
	}
	return nil
}
