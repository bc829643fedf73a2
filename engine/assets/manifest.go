package assets

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/preload/engine/resources"
)

// DefaultBasePath is the conventional asset root. Reload-by-URL is only
// honored for manifests rooted here.
const DefaultBasePath = "assets"

// ResourceEntry is one candidate representation of a logical resource.
// Entries sharing a name are interchangeable encodings; at most one of them
// is ever loaded.
type ResourceEntry struct {
	Name   string           `toml:"name"`
	URL    string           `toml:"url"`
	Format resources.Format `toml:"format"`
	Size   int64            `toml:"size"`
}

func (e ResourceEntry) Category() resources.FormatCategory {
	return resources.CategoryOf(e.Format)
}

// Manifest is the declarative description of an asset bundle.
type Manifest struct {
	BasePath string          `toml:"base_path"`
	Entries  []ResourceEntry `toml:"entry"`
}

// ParseManifest decodes and validates a TOML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.BasePath == "" {
		m.BasePath = DefaultBasePath
	}
	m.BasePath = strings.TrimSuffix(m.BasePath, "/")
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

func (m *Manifest) validate() error {
	byName := make(map[string]resources.FormatCategory, len(m.Entries))
	for i, e := range m.Entries {
		if e.Name == "" {
			return fmt.Errorf("manifest entry %d: missing name", i)
		}
		if e.URL == "" {
			return fmt.Errorf("manifest entry %q: missing url", e.Name)
		}
		if e.Size < 0 {
			return fmt.Errorf("manifest entry %q: negative size %d", e.Name, e.Size)
		}
		cat := e.Category()
		if cat == resources.CategoryNone {
			return fmt.Errorf("manifest entry %q: unknown format %q", e.Name, e.Format)
		}
		if prev, ok := byName[e.Name]; ok && prev != cat {
			return fmt.Errorf("manifest entry %q: mixes %s and %s encodings", e.Name, prev, cat)
		}
		byName[e.Name] = cat
	}
	return nil
}

// FullURL resolves an entry's URL against the manifest base path. Absolute
// URLs and URLs already rooted at the base path pass through untouched.
func (m *Manifest) FullURL(e ResourceEntry) string {
	if strings.Contains(e.URL, "://") || strings.HasPrefix(e.URL, "/") {
		return e.URL
	}
	if strings.HasPrefix(e.URL, m.BasePath+"/") {
		return e.URL
	}
	return m.BasePath + "/" + e.URL
}

// Group is every entry sharing one logical name, in manifest order.
type Group struct {
	Name    string
	Entries []ResourceEntry
}

// Category of the group. Validation guarantees all entries agree.
func (g Group) Category() resources.FormatCategory {
	return g.Entries[0].Category()
}

// Groups partitions the manifest's entries by logical name, preserving the
// order of first appearance.
func (m *Manifest) Groups() []Group {
	index := make(map[string]int)
	var groups []Group
	for _, e := range m.Entries {
		i, ok := index[e.Name]
		if !ok {
			i = len(groups)
			index[e.Name] = i
			groups = append(groups, Group{Name: e.Name})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// StripQuery drops a cache-busting query-string suffix from a URL.
func StripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
