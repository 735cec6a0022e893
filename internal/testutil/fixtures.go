package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll(%s) failed: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", path, err)
	}
	return path
}

// WriteScript writes an executable file to root/rel.
func WriteScript(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := WriteFile(t, root, rel, content)
	if err := os.Chmod(path, 0755); err != nil {
		t.Fatalf("Chmod(%s) failed: %v", path, err)
	}
	return path
}

// ReadFile returns the content of root/rel.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("ReadFile(%s) failed: %v", rel, err)
	}
	return string(data)
}

// FixtureManifest is a package.json with a stable, non-alphabetical key
// order so byte-identity checks catch any reformatting.
const FixtureManifest = `{
  "name": "fixture-addon",
  "version": "0.0.0",
  "scripts": {
    "test": "ember test"
  },
  "devDependencies": {
    "ember-source": "~3.28.0",
    "ember-cli": "~3.28.0"
  },
  "ember-addon": {
    "configPath": "tests/dummy/config"
  }
}
`
