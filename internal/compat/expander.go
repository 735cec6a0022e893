package compat

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/roach88/tryeach/internal/scenario"
)

// DefaultAliases maps ecosystem names to the npm package that carries them.
var DefaultAliases = map[string]string{
	"ember": "ember-source",
}

// VersionLister lists the published versions of an npm package.
type VersionLister interface {
	Versions(ctx context.Context, pkg string) ([]*semver.Version, error)
}

// Expander derives synthetic scenarios from compatibility declarations.
type Expander struct {
	lister  VersionLister
	aliases map[string]string
	logger  *logrus.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithLister sets the source used for non-exact ranges.
func WithLister(l VersionLister) Option {
	return func(e *Expander) { e.lister = l }
}

// WithAliases replaces the ecosystem-name to npm-package table.
func WithAliases(aliases map[string]string) Option {
	return func(e *Expander) { e.aliases = aliases }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Expander) { e.logger = l }
}

// New creates an Expander. Without WithLister only exact ranges resolve.
func New(opts ...Option) *Expander {
	e := &Expander{aliases: DefaultAliases}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logrus.New()
	}
	return e
}

// Active reports whether expansion applies for the given inputs.
//
// An override always activates expansion. Otherwise the declaration is used
// when the configuration opts in with useVersionCompatibility, or when it
// declares no scenarios of its own.
func Active(cfg *scenario.Configuration, declared, override scenario.VersionCompatibility) bool {
	if len(override) > 0 {
		return true
	}
	if len(declared) == 0 {
		return false
	}
	return cfg == nil || cfg.UseVersionCompatibility || len(cfg.Scenarios) == 0
}

// Expand returns cfg with synthetic scenarios merged in. cfg is not modified.
// A nil cfg is treated as an empty configuration.
func (e *Expander) Expand(ctx context.Context, cfg *scenario.Configuration, declared, override scenario.VersionCompatibility) (*scenario.Configuration, error) {
	out := cfg.Clone()
	if out == nil {
		out = &scenario.Configuration{}
	}

	if !Active(cfg, declared, override) {
		e.logger.Debug("version compatibility not active, configuration passed through")
		return out, nil
	}

	compat := declared
	if len(override) > 0 {
		compat = override
		out.UseVersionCompatibility = true
	}

	synthetic, err := e.Scenarios(ctx, compat)
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"declared":  len(out.Scenarios),
		"synthetic": len(synthetic),
	}).Debug("merging version compatibility scenarios")

	out.Scenarios = Merge(out.Scenarios, synthetic)
	return out, nil
}

// Scenarios generates one scenario per resolved version of each declared
// package. Packages are processed in sorted order, versions ascending.
func (e *Expander) Scenarios(ctx context.Context, compat scenario.VersionCompatibility) ([]scenario.Scenario, error) {
	var out []scenario.Scenario
	for _, pkg := range compat.Packages() {
		versions, err := e.resolve(ctx, pkg, compat[pkg])
		if err != nil {
			return nil, err
		}
		npmName := e.alias(pkg)
		for _, v := range versions {
			out = append(out, scenario.Scenario{
				Name: ScenarioName(pkg, v),
				Npm: &scenario.NpmOverrides{
					DevDependencies: map[string]string{npmName: v.String()},
				},
			})
		}
	}
	return out, nil
}

// ScenarioName is the deterministic name of a synthetic scenario.
func ScenarioName(pkg string, v *semver.Version) string {
	return fmt.Sprintf("%s-%s", pkg, v.String())
}

func (e *Expander) alias(pkg string) string {
	if npmName, ok := e.aliases[pkg]; ok {
		return npmName
	}
	return pkg
}

func (e *Expander) resolve(ctx context.Context, pkg, rng string) ([]*semver.Version, error) {
	constraint, err := semver.NewConstraint(rng)
	if err != nil {
		return nil, &RangeError{Package: pkg, Range: rng, Err: err}
	}

	if pins, ok := ExactPins(rng); ok {
		return pins, nil
	}

	if e.lister == nil {
		return nil, &RangeError{Package: pkg, Range: rng, Err: fmt.Errorf("range is not an exact version and no version source is configured")}
	}

	available, err := e.lister.Versions(ctx, e.alias(pkg))
	if err != nil {
		return nil, &RangeError{Package: pkg, Range: rng, Err: err}
	}

	versions := NewestPerMinor(constraint, available)
	if len(versions) == 0 {
		return nil, &RangeError{Package: pkg, Range: rng, Err: fmt.Errorf("no published version satisfies the range")}
	}
	return versions, nil
}

// Merge overlays synthetic scenarios onto the user's list by exact name.
//
// User scenarios keep their positions; a user scenario sharing a name with a
// synthetic one is merged with it (user fields win). Synthetic scenarios
// with new names are appended in their own order.
func Merge(user, synthetic []scenario.Scenario) []scenario.Scenario {
	byName := lo.KeyBy(synthetic, func(s scenario.Scenario) string { return s.Name })
	merged := make(map[string]bool, len(synthetic))

	out := make([]scenario.Scenario, 0, len(user)+len(synthetic))
	for _, u := range user {
		s, ok := byName[u.Name]
		if !ok {
			out = append(out, u.Clone())
			continue
		}
		out = append(out, mergeScenario(u, s))
		merged[u.Name] = true
	}
	for _, s := range synthetic {
		if !merged[s.Name] {
			out = append(out, s.Clone())
		}
	}
	return out
}

// mergeScenario fills fields absent from user with those of synthetic.
func mergeScenario(user, synthetic scenario.Scenario) scenario.Scenario {
	out := user.Clone()
	if out.Npm == nil {
		out.Npm = synthetic.Npm.Clone()
	}
	if out.Command == "" {
		out.Command = synthetic.Command
	}
	if out.Env == nil && synthetic.Env != nil {
		out.Env = lo.Assign(synthetic.Env)
	}
	out.AllowedToFail = out.AllowedToFail || synthetic.AllowedToFail
	for k, v := range synthetic.Extra {
		if _, ok := out.Extra[k]; ok {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = v
	}
	return out
}
