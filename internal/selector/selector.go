// Package selector narrows a resolved configuration to the scenarios a
// command should run.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/tryeach/internal/scenario"
)

// Preset variants understood by the preset family commands.
const (
	VariantSafe      = "safe"
	VariantOptimized = "optimized"
)

// Variants lists the recognised preset variants.
var Variants = []string{VariantSafe, VariantOptimized}

// PresetGenerator builds the default scenario for a preset variant when the
// configuration does not declare one.
type PresetGenerator interface {
	Generate(ctx context.Context, variant string) (scenario.Scenario, error)
}

// Request describes what a command asked to run. At most one of Names and
// PresetFamily should be set; an empty Request selects everything.
type Request struct {
	Names         []string
	PresetFamily  string
	PresetVariant string
}

// UnknownScenarioError reports requested names missing from the configuration.
type UnknownScenarioError struct {
	Names     []string
	Available []string
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario(s) %s; available: %s",
		strings.Join(e.Names, ", "), strings.Join(e.Available, ", "))
}

// UsageError reports a malformed command invocation.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// IsUsageError returns true if err is a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// ValidatePresetVariant checks a preset variant before any configuration is
// loaded.
func ValidatePresetVariant(family, variant string) error {
	if lo.Contains(Variants, variant) {
		return nil
	}
	return &UsageError{Message: fmt.Sprintf(
		"The `tryeach %s <%s>` command requires a %s argument.",
		family, strings.Join(Variants, "|"), strings.Join(Variants, " or "))}
}

// PresetName is the scenario name a preset variant is looked up by.
func PresetName(family, variant string) string {
	return family + "-" + variant
}

// Selector chooses scenarios from a resolved configuration.
type Selector struct {
	generator PresetGenerator
}

// New creates a Selector. generator may be nil when no preset family is used.
func New(generator PresetGenerator) *Selector {
	return &Selector{generator: generator}
}

// Select returns the scenarios to run for req, in run order.
//
// For a preset request the configuration's scenario named
// "<family>-<variant>" is returned unmodified if present; otherwise the
// generator's scenario is returned and the rest of the configuration is
// ignored.
func (s *Selector) Select(ctx context.Context, cfg *scenario.Configuration, req Request) ([]scenario.Scenario, error) {
	switch {
	case req.PresetFamily != "":
		return s.selectPreset(ctx, cfg, req.PresetFamily, req.PresetVariant)
	case len(req.Names) > 0:
		return selectNames(cfg, req.Names)
	default:
		if cfg == nil {
			return nil, nil
		}
		return cfg.Scenarios, nil
	}
}

func (s *Selector) selectPreset(ctx context.Context, cfg *scenario.Configuration, family, variant string) ([]scenario.Scenario, error) {
	if err := ValidatePresetVariant(family, variant); err != nil {
		return nil, err
	}

	name := PresetName(family, variant)
	if found, ok := cfg.Find(name); ok {
		return []scenario.Scenario{found}, nil
	}

	if s.generator == nil {
		return nil, fmt.Errorf("scenario %q is not configured and no preset generator is available", name)
	}
	generated, err := s.generator.Generate(ctx, variant)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s scenario: %w", name, err)
	}
	return []scenario.Scenario{generated}, nil
}

func selectNames(cfg *scenario.Configuration, names []string) ([]scenario.Scenario, error) {
	var out []scenario.Scenario
	var missing []string
	for _, name := range names {
		found, ok := cfg.Find(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out = append(out, found)
	}
	if len(missing) > 0 {
		var available []string
		if cfg != nil {
			available = lo.Map(cfg.Scenarios, func(s scenario.Scenario, _ int) string { return s.Name })
		}
		return nil, &UnknownScenarioError{Names: missing, Available: available}
	}
	return out, nil
}
