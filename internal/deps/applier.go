package deps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/runner"
	"github.com/roach88/tryeach/internal/scenario"
)

// BackupDir is the project-relative directory holding the original files.
const BackupDir = ".tryeach/backup"

// BackupStateFile, inside BackupDir, records how the backup was taken.
const BackupStateFile = "state.json"

type backupState struct {
	PackageManager string `json:"packageManager"`
	// Lockfile is true when the package manager's lockfile existed at
	// backup time.
	Lockfile bool `json:"lockfile"`
}

// Lockfiles maps each package manager to the lockfile it owns.
var Lockfiles = map[string]string{
	scenario.PackageManagerNPM:  "package-lock.json",
	scenario.PackageManagerYarn: "yarn.lock",
	scenario.PackageManagerPNPM: "pnpm-lock.yaml",
}

var installArgs = map[string][]string{
	scenario.PackageManagerNPM:  {"npm", "install", "--no-package-lock"},
	scenario.PackageManagerYarn: {"yarn", "install", "--no-lockfile", "--ignore-engines"},
	scenario.PackageManagerPNPM: {"pnpm", "install", "--no-lockfile"},
}

// Runner runs install commands.
type Runner interface {
	Run(ctx context.Context, cmd runner.Command) (runner.Outcome, error)
}

// InstallError reports a failed package manager install.
type InstallError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%q exited with code %d", e.Command, e.ExitCode)
}

// IsInstallError returns true if err is an InstallError.
func IsInstallError(err error) bool {
	var ie *InstallError
	return errors.As(err, &ie)
}

// NpmApplier rewrites package.json and installs with npm, yarn or pnpm.
type NpmApplier struct {
	Root           string
	PackageManager string
	Runner         Runner
	Logger         *logrus.Logger

	// Stream, when set, receives install output.
	Stream io.Writer
}

// NewNpmApplier creates an applier for the project at root.
func NewNpmApplier(root, packageManager string, r Runner, logger *logrus.Logger) *NpmApplier {
	if packageManager == "" {
		packageManager = scenario.PackageManagerNPM
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &NpmApplier{Root: root, PackageManager: packageManager, Runner: r, Logger: logger}
}

// InstallCommand returns the install command line for the configured
// package manager followed by npmOptions.
func (a *NpmApplier) InstallCommand(npmOptions []string) string {
	args := append([]string(nil), installArgs[a.packageManager()]...)
	for _, opt := range npmOptions {
		args = append(args, shellQuote(opt))
	}
	return strings.Join(args, " ")
}

// Apply rewrites the manifest with overrides and installs. A nil overrides
// installs the original manifest.
func (a *NpmApplier) Apply(ctx context.Context, overrides *scenario.NpmOverrides, npmOptions []string) error {
	if err := a.backup(); err != nil {
		return err
	}

	original, err := os.ReadFile(a.backupPath(project.ManifestFile))
	if err != nil {
		return fmt.Errorf("failed to read manifest backup: %w", err)
	}

	rewritten := original
	if len(overrides.Sections()) > 0 {
		rewritten, err = RewriteManifest(original, overrides)
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(a.path(project.ManifestFile), rewritten, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", project.ManifestFile, err)
	}

	a.Logger.WithField("package_manager", a.packageManager()).Debug("installing scenario dependencies")
	return a.install(ctx, npmOptions)
}

// Restore puts the backed up files back and reinstalls. It is a no-op when
// there is no backup.
func (a *NpmApplier) Restore(ctx context.Context) error {
	restored, err := a.restoreFiles()
	if err != nil || !restored {
		return err
	}
	a.Logger.Debug("reinstalling original dependencies")
	return a.install(ctx, nil)
}

// Reset restores a backup left behind by an interrupted run. It reports
// whether a backup was found. The package manager recorded with the backup
// replaces a.PackageManager for the restore and reinstall.
func (a *NpmApplier) Reset(ctx context.Context) (bool, error) {
	restored, err := a.restoreFiles()
	if err != nil || !restored {
		return restored, err
	}
	return true, a.install(ctx, nil)
}

// HasBackup reports whether a backup exists.
func (a *NpmApplier) HasBackup() bool {
	_, err := os.Stat(a.backupPath(project.ManifestFile))
	return err == nil
}

func (a *NpmApplier) backup() error {
	if a.HasBackup() {
		return nil
	}
	if err := os.MkdirAll(a.path(BackupDir), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := copyFile(a.path(project.ManifestFile), a.backupPath(project.ManifestFile)); err != nil {
		return fmt.Errorf("failed to back up %s: %w", project.ManifestFile, err)
	}

	state := backupState{PackageManager: a.packageManager()}
	lockfile := a.lockfile()
	err := copyFile(a.path(lockfile), a.backupPath(lockfile))
	switch {
	case err == nil:
		state.Lockfile = true
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to back up %s: %w", lockfile, err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.backupPath(BackupStateFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write backup state: %w", err)
	}
	a.Logger.WithField("dir", a.path(BackupDir)).Debug("backed up dependency files")
	return nil
}

func (a *NpmApplier) restoreFiles() (bool, error) {
	if !a.HasBackup() {
		return false, nil
	}
	state, err := readBackupState(a.Root)
	if err != nil {
		return false, err
	}
	if state != nil {
		a.PackageManager = state.PackageManager
	}

	if err := copyFile(a.backupPath(project.ManifestFile), a.path(project.ManifestFile)); err != nil {
		return false, fmt.Errorf("failed to restore %s: %w", project.ManifestFile, err)
	}

	lockfile := a.lockfile()
	err = copyFile(a.backupPath(lockfile), a.path(lockfile))
	switch {
	case err == nil:
	case !os.IsNotExist(err):
		return false, fmt.Errorf("failed to restore %s: %w", lockfile, err)
	case state != nil && !state.Lockfile:
		// The install created it.
		if rmErr := os.Remove(a.path(lockfile)); rmErr != nil && !os.IsNotExist(rmErr) {
			return false, fmt.Errorf("failed to remove %s: %w", lockfile, rmErr)
		}
	default:
		a.Logger.WithField("lockfile", lockfile).Warn("backup has no lockfile and no state; leaving it in place")
	}
	if err := os.RemoveAll(a.path(BackupDir)); err != nil {
		return false, fmt.Errorf("failed to remove backup directory: %w", err)
	}
	return true, nil
}

func (a *NpmApplier) install(ctx context.Context, npmOptions []string) error {
	if a.Runner == nil {
		return errors.New("no command runner configured")
	}
	line := a.InstallCommand(npmOptions)
	out, err := a.Runner.Run(ctx, runner.Command{Line: line, Dir: a.Root, Stream: a.Stream})
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	if !out.Success() {
		return &InstallError{Command: line, ExitCode: out.ExitCode, Output: out.Output}
	}
	return nil
}

func (a *NpmApplier) packageManager() string {
	if _, ok := installArgs[a.PackageManager]; ok {
		return a.PackageManager
	}
	return scenario.PackageManagerNPM
}

func (a *NpmApplier) lockfile() string {
	return Lockfiles[a.packageManager()]
}

// readBackupState returns nil when the backup carries no state file.
func readBackupState(root string) (*backupState, error) {
	data, err := os.ReadFile(filepath.Join(root, BackupDir, BackupStateFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup state: %w", err)
	}
	var state backupState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse backup state: %w", err)
	}
	if _, ok := installArgs[state.PackageManager]; !ok {
		return nil, fmt.Errorf("backup state names unknown package manager %q", state.PackageManager)
	}
	return &state, nil
}

func (a *NpmApplier) path(rel string) string {
	return filepath.Join(a.Root, rel)
}

func (a *NpmApplier) backupPath(name string) string {
	return filepath.Join(a.Root, BackupDir, name)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>*?()[]{}#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// DetectPackageManager returns the package manager recorded with a backup.
// Without one it picks the package manager whose lockfile is in the backup
// or the project root, preferring the backup. It defaults to npm.
func DetectPackageManager(root string) string {
	if state, err := readBackupState(root); err == nil && state != nil {
		return state.PackageManager
	}
	order := []string{scenario.PackageManagerYarn, scenario.PackageManagerPNPM, scenario.PackageManagerNPM}
	for _, dir := range []string{filepath.Join(root, BackupDir), root} {
		for _, pm := range order {
			if _, err := os.Stat(filepath.Join(dir, Lockfiles[pm])); err == nil {
				return pm
			}
		}
	}
	return scenario.PackageManagerNPM
}
