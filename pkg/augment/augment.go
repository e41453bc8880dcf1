// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package augment defines the public interface for dts-augment, a tool that
// merges ambient module augmentations from TypeScript sources into API
// Extractor rollup files.
package augment

import (
	"context"
	"errors"
	"log/slog"
)

// Error types for the Augmenter API.
var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Config configures an Augmenter instance.
type Config struct {
	ConfigPath string       // Path to the api-extractor.json config file (required)
	DryRun     bool         // Compute and report changes without writing any file
	Include    []string     // Source file globs to scan (default **/*.ts)
	Exclude    []string     // Globs filtered out of the scan (defaults cover declarations and build output)
	Logger     *slog.Logger // Structured log destination (default slog.Default())
}

// Result holds the outcome of an Augmenter.Run invocation.
type Result struct {
	AugmentedFiles           []string          // Rollup files rewritten on this run
	SkippedFiles             []string          // Configured rollups missing from disk
	Previews                 map[string]string // Dry-run patch previews keyed by rollup path
	Errors                   []string          // Failures accumulated during the run
	Warnings                 []string          // Advisory findings that did not stop the run
	AugmentationCount        int               // Ambient augmentation blocks discovered
	DeclarationCount         int               // Declarations across all blocks
	UntaggedDeclarationCount int               // Declarations missing a release tag
	DocModelAugmented        bool              // True when the doc model document was patched
	Success                  bool              // True if no errors remain
}

// Augmenter runs the rollup augmentation pipeline against a project.
type Augmenter interface {
	// Run executes the full pipeline: resolve the extractor config, scan the
	// TypeScript sources for ambient module augmentation blocks, merge them
	// into the per-tier rollups, patch the doc model when configured, and
	// return the result.
	Run(ctx context.Context) (*Result, error)
}
