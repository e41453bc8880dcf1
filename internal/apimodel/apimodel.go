// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package apimodel applies a best-effort patch to the .api.json doc model.
// Only interface-level presence checking is performed; member synthesis is
// deliberately out of scope and every hit asks for a manual merge.
package apimodel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/petar-djukic/dts-augment/internal/fsutil"
	"github.com/petar-djukic/dts-augment/pkg/types"
)

// Result reports one doc model pass. Success is false only when the model
// itself is missing, unreadable, or structurally wrong; skipped declarations
// surface as warnings, never as failures.
type Result struct {
	Success        bool
	AugmentedCount int
	Warnings       []string
	Errors         []string
}

// apiItem mirrors the slice of the api-extractor doc model this package
// inspects. The file is never re-serialized from this struct; the original
// bytes are written back untouched.
type apiItem struct {
	Kind    string    `json:"kind"`
	Name    string    `json:"name"`
	Members []apiItem `json:"members"`
}

// Augment checks every extracted interface declaration against the doc
// model at path. A declaration whose interface exists in an entry point is
// counted and flagged for a manual merge; everything else is skipped with a
// warning. The model is rewritten in place (same bytes, atomic) only when
// at least one declaration was counted and dryRun is not set. Augment never
// panics; all failures land in the Result.
func Augment(path string, augs []types.ModuleAugmentation, dryRun bool, log *slog.Logger) *Result {
	result := &Result{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("reading doc model %s: %v", path, err))
		return result
	}

	var root apiItem
	if err := json.Unmarshal(data, &root); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("parsing doc model %s: %v", path, err))
		return result
	}
	if root.Kind != "Package" {
		result.Errors = append(result.Errors, fmt.Sprintf("doc model %s: root kind %q is not a package", path, root.Kind))
		return result
	}

	for _, aug := range augs {
		for _, decl := range aug.Declarations {
			if decl.Kind != types.Interface {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"doc model: skipping %q (%s) from %s; only interface augmentation is supported",
					decl.Name, decl.Kind, aug.SourceFile))
				continue
			}
			if hasInterface(&root, decl.Name) {
				result.AugmentedCount++
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"doc model: interface %q is augmented from %s; merge the members manually",
					decl.Name, aug.SourceFile))
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"doc model: interface %q not found in any entry point; skipping augmentation from %s",
					decl.Name, aug.SourceFile))
			}
		}
	}

	if result.AugmentedCount > 0 && !dryRun {
		if err := fsutil.AtomicWrite(path, data); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("writing doc model %s: %v", path, err))
			return result
		}
		if log != nil {
			log.Debug("doc model marked for review", "path", path, "interfaces", result.AugmentedCount)
		}
	}

	result.Success = true
	return result
}

// hasInterface reports whether any entry point of the model declares a
// top-level interface with the given name.
func hasInterface(root *apiItem, name string) bool {
	for i := range root.Members {
		entry := &root.Members[i]
		if entry.Kind != "EntryPoint" {
			continue
		}
		for j := range entry.Members {
			if entry.Members[j].Kind == "Interface" && entry.Members[j].Name == name {
				return true
			}
		}
	}
	return false
}
