package scenario

import (
	"maps"
	"sort"
	"time"
)

// Package managers understood by the dependency applier.
const (
	PackageManagerNPM  = "npm"
	PackageManagerYarn = "yarn"
	PackageManagerPNPM = "pnpm"
)

// DefaultCommand is run when neither the scenario nor the configuration
// names a command.
const DefaultCommand = "npm test"

// VersionCompatibility maps an ecosystem package name (e.g. "ember") to a
// semver range. It is read from the project manifest or passed as an override.
type VersionCompatibility map[string]string

// Packages returns the declared package names in sorted order.
func (vc VersionCompatibility) Packages() []string {
	names := make([]string, 0, len(vc))
	for name := range vc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NpmOverrides holds the manifest sections a scenario replaces.
// Each map is package name -> version spec.
type NpmOverrides struct {
	Dependencies     map[string]string `json:"dependencies,omitempty" jsonschema:"description=Overrides for the dependencies section"`
	DevDependencies  map[string]string `json:"devDependencies,omitempty" jsonschema:"description=Overrides for the devDependencies section"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty" jsonschema:"description=Overrides for the peerDependencies section"`
	Overrides        map[string]string `json:"overrides,omitempty" jsonschema:"description=npm overrides section"`
	Resolutions      map[string]string `json:"resolutions,omitempty" jsonschema:"description=yarn resolutions section"`
}

// Sections returns the non-empty override sections keyed by manifest field name.
func (n *NpmOverrides) Sections() map[string]map[string]string {
	sections := make(map[string]map[string]string)
	if n == nil {
		return sections
	}
	for key, section := range map[string]map[string]string{
		"dependencies":     n.Dependencies,
		"devDependencies":  n.DevDependencies,
		"peerDependencies": n.PeerDependencies,
		"overrides":        n.Overrides,
		"resolutions":      n.Resolutions,
	} {
		if len(section) > 0 {
			sections[key] = section
		}
	}
	return sections
}

// Clone returns a deep copy.
func (n *NpmOverrides) Clone() *NpmOverrides {
	if n == nil {
		return nil
	}
	return &NpmOverrides{
		Dependencies:     maps.Clone(n.Dependencies),
		DevDependencies:  maps.Clone(n.DevDependencies),
		PeerDependencies: maps.Clone(n.PeerDependencies),
		Overrides:        maps.Clone(n.Overrides),
		Resolutions:      maps.Clone(n.Resolutions),
	}
}

// Scenario is one point in the test matrix.
type Scenario struct {
	// Name uniquely identifies the scenario within a resolved configuration.
	Name string `json:"name" jsonschema:"required,description=Unique scenario name"`

	// Npm holds the dependency overrides applied before the command runs.
	Npm *NpmOverrides `json:"npm,omitempty"`

	// Command replaces the configuration's default command for this scenario.
	Command string `json:"command,omitempty" jsonschema:"description=Command to run instead of the configured default"`

	// AllowedToFail demotes a failure of this scenario to a recorded,
	// non-blocking result.
	AllowedToFail bool `json:"allowedToFail,omitempty"`

	// Env is merged into the environment of the command.
	Env map[string]string `json:"env,omitempty"`

	// Extra holds fields tryeach does not interpret.
	Extra map[string]any `json:"-"`
}

// Clone returns a deep copy of the scenario.
func (s Scenario) Clone() Scenario {
	s.Npm = s.Npm.Clone()
	s.Env = maps.Clone(s.Env)
	s.Extra = maps.Clone(s.Extra)
	return s
}

// Configuration is the normalized result of config resolution.
type Configuration struct {
	Scenarios               []Scenario `json:"scenarios"`
	NpmOptions              []string   `json:"npmOptions,omitempty" jsonschema:"description=Extra arguments for the package manager install"`
	UseVersionCompatibility bool       `json:"useVersionCompatibility,omitempty" jsonschema:"description=Merge scenarios generated from ember-addon.versionCompatibility"`
	Command                 string     `json:"command,omitempty" jsonschema:"description=Default test command"`
	PackageManager          string     `json:"packageManager,omitempty" jsonschema:"enum=npm,enum=yarn,enum=pnpm"`

	Extra map[string]any `json:"-"`
}

// Clone returns a deep copy of the configuration.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	out.Scenarios = make([]Scenario, len(c.Scenarios))
	for i, s := range c.Scenarios {
		out.Scenarios[i] = s.Clone()
	}
	if c.NpmOptions != nil {
		out.NpmOptions = append([]string(nil), c.NpmOptions...)
	}
	out.Extra = maps.Clone(c.Extra)
	return &out
}

// Find returns the scenario with the given name.
func (c *Configuration) Find(name string) (Scenario, bool) {
	if c == nil {
		return Scenario{}, false
	}
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// CommandFor returns the command a scenario runs with, falling back to the
// configuration default and then to DefaultCommand.
func (c *Configuration) CommandFor(s Scenario) string {
	if s.Command != "" {
		return s.Command
	}
	if c != nil && c.Command != "" {
		return c.Command
	}
	return DefaultCommand
}

// Error kinds recorded in ErrorInfo.
const (
	ErrorKindSetup     = "setup"
	ErrorKindExecute   = "execute"
	ErrorKindRestore   = "restore"
	ErrorKindCancelled = "cancelled"
)

// ErrorInfo describes why a scenario did not succeed.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RunResult is the outcome of one scenario.
type RunResult struct {
	Scenario      Scenario      `json:"scenario"`
	Command       string        `json:"command"`
	Success       bool          `json:"success"`
	AllowedToFail bool          `json:"allowedToFail,omitempty"`
	ExitCode      int           `json:"exitCode"`
	Output        string        `json:"-"`
	Duration      time.Duration `json:"durationNs"`
	Error         *ErrorInfo    `json:"error,omitempty"`
}

// Blocking reports whether this result fails the overall run.
func (r RunResult) Blocking() bool {
	return !r.Success && !r.AllowedToFail
}

// Succeeded reports whether every non-allowedToFail scenario succeeded.
func Succeeded(results []RunResult) bool {
	for _, r := range results {
		if r.Blocking() {
			return false
		}
	}
	return true
}
