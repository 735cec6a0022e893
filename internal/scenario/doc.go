// Package scenario defines the data model shared by every tryeach component.
//
// A Configuration is an ordered list of named Scenarios plus run-wide options
// such as npmOptions and the default test command. Each Scenario pins a set of
// dependency versions (its NpmOverrides) and may override the command that is
// run against them.
//
// # Configuration Format
//
// Configurations are normalized through JSON regardless of the file format
// they were written in:
//
//	useVersionCompatibility: true
//	npmOptions: ["--legacy-peer-deps"]
//	command: npm test
//	scenarios:
//	  - name: ember-lts-3.28
//	    npm:
//	      devDependencies:
//	        ember-source: ~3.28.0
//	  - name: ember-canary
//	    allowedToFail: true
//	    env:
//	      EMBER_OPTIONAL_FEATURES: '{"jquery-integration": false}'
//
// Fields that tryeach does not know about are kept in Extra on both
// Configuration and Scenario and written back out unchanged.
//
// # Identity
//
// A Scenario is identified by its Name. Names are compared as opaque, exact
// strings: "Ember-3.28" and "ember-3.28" are different scenarios.
package scenario
