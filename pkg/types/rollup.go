// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// RollupPaths holds the absolute output path of each rollup tier. An empty
// path means the tier is not configured; declarations destined for it are
// simply not emitted anywhere.
type RollupPaths struct {
	Public   string // Trimmed to @public declarations only
	Beta     string // Trimmed to @beta and above
	Alpha    string // Trimmed to @alpha and above
	Internal string // Untrimmed; carries every declaration
}

// ForLevel returns the configured rollup path for a tier, or "" when the
// tier has no rollup.
func (p RollupPaths) ForLevel(l ReleaseLevel) string {
	switch l {
	case Public:
		return p.Public
	case Beta:
		return p.Beta
	case Alpha:
		return p.Alpha
	case Internal:
		return p.Internal
	default:
		return ""
	}
}

// Levels returns the tiers that have a configured rollup path, in fixed
// Public, Beta, Alpha, Internal order.
func (p RollupPaths) Levels() []ReleaseLevel {
	var levels []ReleaseLevel
	for _, l := range []ReleaseLevel{Public, Beta, Alpha, Internal} {
		if p.ForLevel(l) != "" {
			levels = append(levels, l)
		}
	}
	return levels
}

// Any reports whether at least one tier has a configured rollup path.
func (p RollupPaths) Any() bool {
	return len(p.Levels()) > 0
}
