// Package config resolves the tryeach configuration for a project.
//
// # Locating the configuration file
//
// The first match wins:
//
//  1. An explicit path (--config-path). A missing file is fatal.
//  2. The directory named by package.json "ember-addon.configPath".
//  3. The default directory "config".
//
// Within a directory the standard base name "try-each" is probed with the
// extensions .yaml, .yml, .json, .toml and .cue, then as an executable
// script "try-each" or "try-each.sh".
//
// # Configuration sources
//
// Every file is turned into a ConfigurationSource, which has exactly one
// operation: Materialize(ctx, project). There are three variants:
//
//   - StaticSource: a constant value (YAML, JSON and TOML files).
//   - FuncSource: a synchronous function of the project handle (CUE files,
//     with the project filled in at the path "project").
//   - AsyncSource: a function whose result settles later (config scripts,
//     which receive the project as JSON on stdin and print the
//     configuration as JSON or YAML).
//
// When no file is found the version-compatibility declaration in
// package.json becomes the sole source. Only if that is absent too does
// Resolve fail with ConfigNotFoundError.
package config
