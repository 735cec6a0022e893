package scenario

import (
	"fmt"
)

// Validate checks that every scenario has a name, names are unique and the
// package manager is known. It never repairs the configuration.
func (c *Configuration) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration is nil")
	}

	seen := make(map[string]int, len(c.Scenarios))
	for i, s := range c.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenarios[%d]: name is required", i)
		}
		if prev, ok := seen[s.Name]; ok {
			return fmt.Errorf("scenarios[%d]: duplicate name %q (first declared at scenarios[%d])", i, s.Name, prev)
		}
		seen[s.Name] = i
	}

	switch c.PackageManager {
	case "", PackageManagerNPM, PackageManagerYarn, PackageManagerPNPM:
	default:
		return fmt.Errorf("unknown packageManager %q: must be one of npm, yarn, pnpm", c.PackageManager)
	}

	return nil
}
