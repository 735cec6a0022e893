// Package deps applies a scenario's dependency overrides to a project and
// restores the original dependency state afterwards.
//
// Apply backs up package.json and the package manager's lockfile into
// .tryeach/backup/ the first time it runs, rewrites the manifest sections a
// scenario overrides and installs. Every Apply starts from the backed up
// manifest, so scenarios never see each other's overrides. Restore copies the
// backup bytes back, reinstalls and removes the backup.
package deps
