package config

import (
	"context"

	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/scenario"
)

// ConfigurationSource produces a Configuration for a project.
type ConfigurationSource interface {
	Materialize(ctx context.Context, p *project.Project) (*scenario.Configuration, error)
}

// StaticSource is a constant configuration.
type StaticSource struct {
	Config *scenario.Configuration
}

// Materialize returns a copy of the constant configuration.
func (s StaticSource) Materialize(_ context.Context, _ *project.Project) (*scenario.Configuration, error) {
	if s.Config == nil {
		return &scenario.Configuration{}, nil
	}
	return s.Config.Clone(), nil
}

// FuncSource computes the configuration synchronously from the project.
type FuncSource func(p *project.Project) (*scenario.Configuration, error)

// Materialize calls the function.
func (f FuncSource) Materialize(_ context.Context, p *project.Project) (*scenario.Configuration, error) {
	return f(p)
}

// Result is the settled value of an AsyncSource.
type Result struct {
	Config *scenario.Configuration
	Err    error
}

// AsyncSource starts computing the configuration and returns a channel that
// receives exactly one Result.
type AsyncSource func(ctx context.Context, p *project.Project) <-chan Result

// Materialize waits for the result or for ctx to be cancelled.
func (f AsyncSource) Materialize(ctx context.Context, p *project.Project) (*scenario.Configuration, error) {
	select {
	case res := <-f(ctx, p):
		return res.Config, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
