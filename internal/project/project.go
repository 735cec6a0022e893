// Package project loads the project handle that configuration sources and
// the dependency applier operate on: the project root and its package.json.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/tryeach/internal/scenario"
)

// ManifestFile is the dependency manifest tryeach reads and rewrites.
const ManifestFile = "package.json"

// AddonKey is the manifest field holding tryeach-relevant addon settings.
const AddonKey = "ember-addon"

// AddonConfig is the subset of the addon manifest field tryeach consumes.
type AddonConfig struct {
	// ConfigPath is a directory, relative to the project root, that holds
	// the addon's config files.
	ConfigPath string `json:"configPath,omitempty"`

	// VersionCompatibility declares the ecosystem versions the addon supports.
	VersionCompatibility scenario.VersionCompatibility `json:"versionCompatibility,omitempty"`
}

// Manifest is a parsed package.json.
type Manifest struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Addon           *AddonConfig      `json:"ember-addon,omitempty"`

	// Raw is the full decoded document, handed to configuration sources.
	Raw map[string]any `json:"-"`
}

// Project is the handle passed to configuration sources.
type Project struct {
	Root     string
	Manifest Manifest
}

// Load reads root/package.json. A missing manifest yields an empty one so
// that projects without package.json can still be configured explicitly.
func Load(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	p := &Project{Root: abs}
	data, err := os.ReadFile(filepath.Join(abs, ManifestFile))
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	p.Manifest = *m
	return p, nil
}

// ParseManifest decodes package.json bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}
	if err := json.Unmarshal(data, &m.Raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}
	return &m, nil
}

// ConfigDir returns the addon-declared config directory, or "" when unset.
func (p *Project) ConfigDir() string {
	if p.Manifest.Addon == nil {
		return ""
	}
	return p.Manifest.Addon.ConfigPath
}

// VersionCompatibility returns the manifest's compatibility declaration.
func (p *Project) VersionCompatibility() scenario.VersionCompatibility {
	if p.Manifest.Addon == nil {
		return nil
	}
	return p.Manifest.Addon.VersionCompatibility
}

// DependencyVersion looks a package up in devDependencies, then dependencies.
func (p *Project) DependencyVersion(name string) (string, bool) {
	if v, ok := p.Manifest.DevDependencies[name]; ok {
		return v, true
	}
	v, ok := p.Manifest.Dependencies[name]
	return v, ok
}

// Path resolves a project-relative path. Absolute paths are returned as is.
func (p *Project) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

// Data is the representation of the project handed to configuration
// functions (CUE files and config scripts).
func (p *Project) Data() map[string]any {
	manifest := p.Manifest.Raw
	if manifest == nil {
		manifest = map[string]any{}
	}
	return map[string]any{
		"root":     p.Root,
		"name":     p.Manifest.Name,
		"version":  p.Manifest.Version,
		"manifest": manifest,
	}
}
