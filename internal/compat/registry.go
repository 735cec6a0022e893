package compat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// RegistryLister lists versions from an npm registry using the abbreviated
// package metadata document.
type RegistryLister struct {
	BaseURL string
	Client  *http.Client
}

// NewRegistryLister creates a lister for baseURL, or DefaultRegistry if empty.
func NewRegistryLister(baseURL string) *RegistryLister {
	if baseURL == "" {
		baseURL = DefaultRegistry
	}
	return &RegistryLister{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type packument struct {
	Versions map[string]json.RawMessage `json:"versions"`
}

// Versions fetches every published version of pkg. Entries that are not
// valid semver are skipped.
func (r *RegistryLister) Versions(ctx context.Context, pkg string) ([]*semver.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/"+url.PathEscape(pkg), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.npm.install-v1+json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request for %s failed: %w", pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned %s for %s", resp.Status, pkg)
	}

	var doc packument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode registry response for %s: %w", pkg, err)
	}

	versions := make([]*semver.Version, 0, len(doc.Versions))
	for raw := range doc.Versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}
