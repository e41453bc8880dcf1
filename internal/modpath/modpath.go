// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package modpath re-anchors module specifiers from the source file that
// wrote them to the rollup's own frame of reference.
package modpath

import (
	"path/filepath"
	"strings"
)

// Resolver maps a module specifier, as written in a source file, to the
// equivalent specifier when imported from the entry point's directory.
// Construction closes over the two base paths; Resolve itself is stateless
// and performs no caching.
type Resolver struct {
	projectFolder string
	entryDir      string
}

// New builds a Resolver. projectFolder is the absolute root that the
// extractor's source paths are relative to; entryPoint is the absolute path
// of the main entry-point file the rollups stand in for.
func New(projectFolder, entryPoint string) *Resolver {
	return &Resolver{
		projectFolder: projectFolder,
		entryDir:      filepath.Dir(entryPoint),
	}
}

// Resolve re-anchors specifier from sourceFile (project-relative, forward
// slashes) to the entry point's directory. Non-relative specifiers name
// external packages and are returned unchanged, byte for byte. The result
// uses forward slashes and always begins with an explicit "./" or "../".
func (r *Resolver) Resolve(specifier, sourceFile string) string {
	if !isRelative(specifier) {
		return specifier
	}

	sourceDir := filepath.Dir(filepath.Join(r.projectFolder, filepath.FromSlash(sourceFile)))
	target := filepath.Join(sourceDir, filepath.FromSlash(specifier))

	rel, err := filepath.Rel(r.entryDir, target)
	if err != nil {
		// Different volumes; leave the specifier as written.
		return specifier
	}

	rel = filepath.ToSlash(rel)
	switch {
	case rel == ".":
		return "./"
	case rel == ".." || strings.HasPrefix(rel, "../"):
		return rel
	default:
		return "./" + rel
	}
}

// isRelative reports whether a specifier is path-relative. Anything else
// ("react", "@scope/pkg", "fs/promises") denotes an external package.
func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}
