// Package preset generates default scenarios for preset families that a
// project may not declare in its configuration.
package preset

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/selector"
)

// EmbroiderFamily is the preset family name used by the embroider command.
const EmbroiderFamily = "embroider"

// EmbroiderOptionsEnv tells @embroider/test-setup which build mode to use.
const EmbroiderOptionsEnv = "EMBROIDER_TEST_SETUP_OPTIONS"

// DefaultEmbroiderVersion is used when the project does not pin
// @embroider/test-setup.
const DefaultEmbroiderVersion = "latest"

// EmbroiderPackages are the packages every embroider scenario installs.
var EmbroiderPackages = []string{
	"@embroider/core",
	"@embroider/webpack",
	"@embroider/compat",
	"@embroider/test-setup",
}

// Embroider generates embroider-safe and embroider-optimized scenarios.
type Embroider struct {
	project *project.Project
	logger  *logrus.Logger
}

// NewEmbroider creates a generator for p.
func NewEmbroider(p *project.Project, logger *logrus.Logger) *Embroider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Embroider{project: p, logger: logger}
}

// Generate returns the default scenario for variant.
func (e *Embroider) Generate(_ context.Context, variant string) (scenario.Scenario, error) {
	if err := selector.ValidatePresetVariant(EmbroiderFamily, variant); err != nil {
		return scenario.Scenario{}, err
	}

	version := e.Version()
	devDeps := make(map[string]string, len(EmbroiderPackages))
	for _, pkg := range EmbroiderPackages {
		devDeps[pkg] = version
	}

	e.logger.WithFields(logrus.Fields{
		"variant": variant,
		"version": version,
	}).Debug("generated embroider scenario")

	return scenario.Scenario{
		Name: selector.PresetName(EmbroiderFamily, variant),
		Npm:  &scenario.NpmOverrides{DevDependencies: devDeps},
		Env:  map[string]string{EmbroiderOptionsEnv: variant},
	}, nil
}

// Version is the embroider version to install, taken from the project's own
// @embroider/test-setup dependency when present.
func (e *Embroider) Version() string {
	if e.project != nil {
		if v, ok := e.project.DependencyVersion("@embroider/test-setup"); ok && v != "" {
			return v
		}
	}
	return DefaultEmbroiderVersion
}

var _ selector.PresetGenerator = (*Embroider)(nil)
