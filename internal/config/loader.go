package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/scenario"
)

// BaseName is the standard configuration file name without extension.
const BaseName = "try-each"

// DefaultDir is the conventional configuration directory.
const DefaultDir = "config"

// ProjectRootEnv is set for config scripts to the project root.
const ProjectRootEnv = "TRYEACH_PROJECT_ROOT"

// Extensions probed for a configuration file, in order. The empty extension
// and ".sh" are config scripts.
var Extensions = []string{".yaml", ".yml", ".json", ".toml", ".cue", "", ".sh"}

// Candidates returns the configuration file paths probed in dir.
func Candidates(dir string) []string {
	out := make([]string, len(Extensions))
	for i, ext := range Extensions {
		out[i] = filepath.Join(dir, BaseName+ext)
	}
	return out
}

// SourceForFile returns the ConfigurationSource for a configuration file,
// chosen by its extension. Static formats are read and decoded immediately.
func SourceForFile(path string) (ConfigurationSource, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return loadStatic(path, decodeYAML)
	case ".json":
		return loadStatic(path, scenario.Decode)
	case ".toml":
		return loadStatic(path, decodeTOML)
	case ".cue":
		return loadCUE(path)
	case "", ".sh":
		return scriptSource(path), nil
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", ext)
	}
}

func loadStatic(path string, decode func([]byte) (*scenario.Configuration, error)) (ConfigurationSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	return StaticSource{Config: cfg}, nil
}

func decodeYAML(data []byte) (*scenario.Configuration, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return scenario.FromValue(doc)
}

func decodeTOML(data []byte) (*scenario.Configuration, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return scenario.FromValue(doc)
}

// loadCUE compiles a CUE file into a FuncSource. The project handle is
// unified into the value at path "project" and removed from the result.
func loadCUE(path string) (ConfigurationSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return FuncSource(func(p *project.Project) (*scenario.Configuration, error) {
		ctx := cuecontext.New()
		value := ctx.CompileBytes(data, cue.Filename(path))
		if err := value.Err(); err != nil {
			return nil, fmt.Errorf("compiling CUE: %w", err)
		}

		value = value.FillPath(cue.ParsePath("project"), p.Data())
		if err := value.Validate(cue.Concrete(true)); err != nil {
			return nil, fmt.Errorf("evaluating CUE: %w", err)
		}

		var doc map[string]any
		if err := value.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding CUE: %w", err)
		}
		delete(doc, "project")
		return scenario.FromValue(doc)
	}), nil
}

// scriptSource runs an executable configuration script. ".sh" files are run
// through /bin/sh so they need no executable bit.
func scriptSource(path string) AsyncSource {
	return func(ctx context.Context, p *project.Project) <-chan Result {
		ch := make(chan Result, 1)
		go func() {
			cfg, err := runScript(ctx, path, p)
			ch <- Result{Config: cfg, Err: err}
		}()
		return ch
	}
}

func runScript(ctx context.Context, path string, p *project.Project) (*scenario.Configuration, error) {
	input, err := json.Marshal(p.Data())
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}

	var cmd *exec.Cmd
	if filepath.Ext(path) == ".sh" {
		cmd = exec.CommandContext(ctx, "/bin/sh", path)
	} else {
		cmd = exec.CommandContext(ctx, path)
	}
	cmd.Dir = p.Root
	cmd.Env = append(os.Environ(), ProjectRootEnv+"="+p.Root)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("config script failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	// JSON is valid YAML, so one decoder covers both output formats.
	return decodeYAML(stdout.Bytes())
}
