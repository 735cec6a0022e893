package compat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// RangeError reports a compatibility range that could not be resolved.
type RangeError struct {
	Package string
	Range   string
	Err     error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("versionCompatibility %s %q: %v", e.Package, e.Range, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// ExactPins returns the versions of a range made only of exact pins joined
// by "||", such as "=2.18.0" or "2.18.0 || 3.4.0". ok is false for any
// other range.
func ExactPins(rng string) ([]*semver.Version, bool) {
	var pins []*semver.Version
	seen := make(map[string]bool)
	for _, alt := range strings.Split(rng, "||") {
		alt = strings.TrimSpace(alt)
		alt = strings.TrimSpace(strings.TrimPrefix(alt, "="))
		alt = strings.TrimPrefix(alt, "v")
		v, err := semver.StrictNewVersion(alt)
		if err != nil {
			return nil, false
		}
		if seen[v.String()] {
			continue
		}
		seen[v.String()] = true
		pins = append(pins, v)
	}
	if len(pins) == 0 {
		return nil, false
	}
	sort.Sort(semver.Collection(pins))
	return pins, true
}

// NewestPerMinor keeps, for every major.minor line, the newest stable
// version that satisfies c. The result is sorted ascending.
func NewestPerMinor(c *semver.Constraints, available []*semver.Version) []*semver.Version {
	newest := make(map[string]*semver.Version)
	for _, v := range available {
		if v.Prerelease() != "" || !c.Check(v) {
			continue
		}
		line := fmt.Sprintf("%d.%d", v.Major(), v.Minor())
		if cur, ok := newest[line]; !ok || v.GreaterThan(cur) {
			newest[line] = v
		}
	}

	out := make([]*semver.Version, 0, len(newest))
	for _, v := range newest {
		out = append(out, v)
	}
	sort.Sort(semver.Collection(out))
	return out
}
