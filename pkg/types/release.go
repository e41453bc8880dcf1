// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across dts-augment packages.
package types

// ReleaseLevel identifies the maturity tier of a declaration, derived from
// its TSDoc release tag. Levels are ordered by inclusiveness: a rollup of
// tier T carries every declaration whose level L satisfies L <= T, so the
// internal rollup carries everything and the public rollup carries only
// public declarations.
type ReleaseLevel int

const (
	Public   ReleaseLevel = iota // @public: ships in every rollup tier
	Beta                         // @beta: beta, alpha, and internal rollups
	Alpha                        // @alpha: alpha and internal rollups
	Internal                     // @internal: internal rollup only
)

// String returns the TSDoc tag name of the level, without the "@".
func (l ReleaseLevel) String() string {
	switch l {
	case Public:
		return "public"
	case Beta:
		return "beta"
	case Alpha:
		return "alpha"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Includes reports whether a rollup of tier l carries a declaration of
// level other.
func (l ReleaseLevel) Includes(other ReleaseLevel) bool {
	return other <= l
}

// ReleaseTagPriority is the order in which release tags are checked during
// classification; when a doc comment carries several, the first match wins.
var ReleaseTagPriority = []ReleaseLevel{Internal, Alpha, Beta, Public}

// ParseReleaseTag maps a TSDoc modifier tag name (without the "@") to its
// ReleaseLevel. The second return value is false for anything that is not
// one of the four release tags.
func ParseReleaseTag(name string) (ReleaseLevel, bool) {
	switch name {
	case "public":
		return Public, true
	case "beta":
		return Beta, true
	case "alpha":
		return Alpha, true
	case "internal":
		return Internal, true
	default:
		return Public, false
	}
}
