// Package executor runs scenarios one at a time against a project.
//
// Each scenario goes through Setup (apply dependency overrides), Execute
// (run the test command) and Restore (put the original dependencies back).
// Restore runs on every exit path, including scenario failure, setup failure
// and context cancellation, unless the caller asked to skip cleanup.
//
// Scenarios never run concurrently: they all mutate the same package.json
// and node_modules.
package executor
