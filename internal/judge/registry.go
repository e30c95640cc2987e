package judge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GeneralDomain holds the rubrics that apply to any prompt.
const GeneralDomain = "general"

// Registry maps domain/criterion pairs to rubric templates.
type Registry struct {
	rubrics map[string]map[string]string
}

// NewRegistry returns a registry seeded with the built-in rubrics.
func NewRegistry() *Registry {
	r := &Registry{rubrics: map[string]map[string]string{}}
	for domain, set := range builtinRubrics {
		for criterion, text := range set {
			r.Register(domain, criterion, text)
		}
	}
	return r
}

// Register adds or replaces a rubric.
func (r *Registry) Register(domain, criterion, rubric string) {
	if r.rubrics[domain] == nil {
		r.rubrics[domain] = map[string]string{}
	}
	r.rubrics[domain][criterion] = rubric
}

// Lookup resolves a criterion to a rubric. A "domain/criterion" name pins the
// domain. Otherwise the requested domain is tried first, then the general
// rubrics, then the remaining domains in sorted order.
func (r *Registry) Lookup(criterion, domain string) (string, bool) {
	if d, c, ok := strings.Cut(criterion, "/"); ok {
		rubric, found := r.rubrics[d][c]
		return rubric, found
	}

	if domain != "" {
		if rubric, ok := r.rubrics[domain][criterion]; ok {
			return rubric, true
		}
	}
	if rubric, ok := r.rubrics[GeneralDomain][criterion]; ok {
		return rubric, true
	}

	domains := make([]string, 0, len(r.rubrics))
	for d := range r.rubrics {
		if d == domain || d == GeneralDomain {
			continue
		}
		domains = append(domains, d)
	}
	sort.Strings(domains)
	for _, d := range domains {
		if rubric, ok := r.rubrics[d][criterion]; ok {
			return rubric, true
		}
	}

	return "", false
}

// Criteria lists the criteria registered for a domain.
func (r *Registry) Criteria(domain string) []string {
	names := make([]string, 0, len(r.rubrics[domain]))
	for c := range r.rubrics[domain] {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// LoadDir merges rubric files from a directory into the registry. Top-level
// .txt files land in the general domain; files in a subdirectory land in the
// domain named by that subdirectory. The file stem becomes the criterion name.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading rubric directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			subEntries, err := os.ReadDir(filepath.Join(dir, entry.Name()))
			if err != nil {
				return fmt.Errorf("reading rubric directory: %w", err)
			}
			for _, sub := range subEntries {
				if sub.IsDir() || !strings.HasSuffix(sub.Name(), ".txt") {
					continue
				}
				if err := r.loadFile(entry.Name(), filepath.Join(dir, entry.Name(), sub.Name())); err != nil {
					return err
				}
			}
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		if err := r.loadFile(GeneralDomain, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) loadFile(domain, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rubric %s: %w", path, err)
	}
	criterion := strings.TrimSuffix(filepath.Base(path), ".txt")
	r.Register(domain, criterion, string(data))
	return nil
}
