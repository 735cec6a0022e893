package config

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/roach88/tryeach/internal/compat"
	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/scenario"
)

// Input holds the inputs of a single resolution.
type Input struct {
	Project *project.Project

	// ConfigPath is an explicit configuration file, relative to the project
	// root unless absolute.
	ConfigPath string

	// VersionCompatibility, when non-empty, always expands scenarios and
	// replaces the manifest declaration.
	VersionCompatibility scenario.VersionCompatibility
}

// Resolver merges the configuration file and the version-compatibility
// declaration into one validated Configuration.
type Resolver struct {
	expander *compat.Expander
	logger   *logrus.Logger
}

// NewResolver creates a Resolver.
func NewResolver(expander *compat.Expander, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
	}
	if expander == nil {
		expander = compat.New(compat.WithLogger(logger))
	}
	return &Resolver{expander: expander, logger: logger}
}

// Resolve produces the configuration for in.Project.
//
// It fails with ConfigNotFoundError when an explicit path does not exist, or
// when no file is found and no compatibility declaration exists. A found
// configuration that is malformed or yields no scenarios fails with
// InvalidConfigError.
func (r *Resolver) Resolve(ctx context.Context, in Input) (*scenario.Configuration, error) {
	p := in.Project
	if p == nil {
		return nil, fmt.Errorf("project is required")
	}

	path, searched, err := Locate(p, in.ConfigPath)
	if err != nil {
		return nil, err
	}

	var cfg *scenario.Configuration
	if path != "" {
		r.logger.WithField("path", path).Debug("loading configuration file")
		cfg, err = r.materialize(ctx, p, path)
		if err != nil {
			return nil, err
		}
	}

	declared := p.VersionCompatibility()
	if cfg == nil && len(declared) == 0 && len(in.VersionCompatibility) == 0 {
		r.logger.WithField("searched", searched).Debug("no configuration source found")
		return nil, &ConfigNotFoundError{Searched: searched}
	}

	out, err := r.expander.Expand(ctx, cfg, declared, in.VersionCompatibility)
	if err != nil {
		return nil, &InvalidConfigError{Path: path, Err: err}
	}

	if len(out.Scenarios) == 0 {
		return nil, &InvalidConfigError{Path: path, Err: fmt.Errorf("configuration declares no scenarios")}
	}
	if err := out.Validate(); err != nil {
		return nil, &InvalidConfigError{Path: path, Err: err}
	}

	r.logger.WithFields(logrus.Fields{
		"path":      path,
		"scenarios": len(out.Scenarios),
	}).Debug("configuration resolved")
	return out, nil
}

func (r *Resolver) materialize(ctx context.Context, p *project.Project, path string) (*scenario.Configuration, error) {
	src, err := SourceForFile(path)
	if err != nil {
		return nil, &InvalidConfigError{Path: path, Err: err}
	}
	cfg, err := src.Materialize(ctx, p)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &InvalidConfigError{Path: path, Err: err}
	}
	if cfg == nil {
		cfg = &scenario.Configuration{}
	}
	return cfg, nil
}

// Locate finds the configuration file for p. It returns "" when no file
// exists, along with the candidates that were probed. A missing explicit
// path is a ConfigNotFoundError.
func Locate(p *project.Project, explicit string) (string, []string, error) {
	if explicit != "" {
		path := p.Path(explicit)
		if !fileExists(path) {
			return "", []string{path}, &ConfigNotFoundError{Path: path, Searched: []string{path}}
		}
		return path, []string{path}, nil
	}

	var searched []string
	dirs := []string{DefaultDir}
	if dir := p.ConfigDir(); dir != "" && dir != DefaultDir {
		dirs = []string{dir, DefaultDir}
	}
	for _, dir := range dirs {
		for _, candidate := range Candidates(p.Path(dir)) {
			searched = append(searched, candidate)
			if fileExists(candidate) {
				return candidate, searched, nil
			}
		}
	}
	return "", searched, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
