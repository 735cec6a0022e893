// Package compat expands a version-compatibility declaration into scenarios.
//
// A project declares the ecosystem versions it supports in package.json:
//
//	"ember-addon": {
//	  "versionCompatibility": { "ember": ">=3.28.0 <5.0.0" }
//	}
//
// Each (package, version) pair the range resolves to becomes one synthetic
// scenario named "<package>-<version>" that pins the package's npm name in
// devDependencies. Synthetic scenarios are merged into the user's scenario
// list by exact name: when both define a scenario with the same name, fields
// set by the user win and the rest are filled from the synthetic scenario.
//
// Ranges that only pin exact versions ("=2.18.0", "2.18.0 || 3.4.0") resolve
// offline. Any other range asks a VersionLister for the published versions
// and keeps the newest patch release of every minor line that satisfies it.
package compat
