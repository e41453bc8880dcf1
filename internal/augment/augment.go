// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package augment implements the pipeline orchestrator, wiring config
// resolution, extraction, path resolution, rollup augmentation, and the doc
// model pass.
package augment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/petar-djukic/dts-augment/internal/apimodel"
	"github.com/petar-djukic/dts-augment/internal/config"
	"github.com/petar-djukic/dts-augment/internal/extract"
	"github.com/petar-djukic/dts-augment/internal/modpath"
	"github.com/petar-djukic/dts-augment/internal/rollup"
)

// Deps holds injected dependencies for the runner.
type Deps struct {
	ConfigPath string
	DryRun     bool
	Include    []string
	Exclude    []string
	Log        *slog.Logger
}

// RunResult holds the outcome of a Runner.Run invocation. This is the
// internal result type; pkg/augment converts it to the public Result.
type RunResult struct {
	Success                  bool
	AugmentedFiles           []string
	SkippedFiles             []string
	AugmentationCount        int
	DeclarationCount         int
	UntaggedDeclarationCount int
	DocModelAugmented        bool
	Previews                 map[string]string
	Errors                   []string
	Warnings                 []string
}

// Runner orchestrates the augmentation pipeline.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps}
}

// Run executes the pipeline: resolve config, extract augmentation blocks,
// merge them into the rollups, then patch the doc model when enabled and
// the rollup pass did not abort. Configuration failures return an error;
// every later failure aggregates into the result instead. Success is true
// exactly when the aggregated error list is empty.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{Previews: map[string]string{}}
	log := r.logger()

	// Step 1: Resolve configuration.
	cfg, err := config.Load(r.deps.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log.Debug("configuration resolved",
		"projectFolder", cfg.ProjectFolder,
		"entryPoint", cfg.EntryPoint,
		"docModel", cfg.DocModel.Enabled)

	// Step 2: Extract augmentation blocks from the sources.
	extracted, err := extract.Extract(ctx, cfg.ProjectFolder, r.deps.Include, r.deps.Exclude)
	if err != nil {
		return nil, fmt.Errorf("extracting augmentations: %w", err)
	}
	for _, fe := range extracted.Errors {
		result.Errors = append(result.Errors, fe.Error())
	}
	result.AugmentationCount = len(extracted.Augmentations)
	for _, aug := range extracted.Augmentations {
		result.DeclarationCount += len(aug.Declarations)
	}
	result.UntaggedDeclarationCount = len(extracted.Untagged)
	log.Info("extraction finished",
		"augmentations", result.AugmentationCount,
		"declarations", result.DeclarationCount,
		"untagged", result.UntaggedDeclarationCount,
		"fileErrors", len(extracted.Errors))

	// Step 3: Merge into the configured rollups.
	augmenter := &rollup.Augmenter{
		Rollups:  cfg.Rollups,
		Resolver: modpath.New(cfg.ProjectFolder, cfg.EntryPoint),
		Policy:   cfg.TagPolicy,
		DryRun:   r.deps.DryRun,
		Log:      log,
	}
	outcome := augmenter.Apply(extracted.Augmentations, extracted.Untagged)
	result.AugmentedFiles = outcome.AugmentedFiles
	result.SkippedFiles = outcome.SkippedFiles
	result.Errors = append(result.Errors, outcome.Errors...)
	result.Warnings = append(result.Warnings, outcome.Warnings...)
	for path, preview := range outcome.Previews {
		result.Previews[path] = preview
	}
	if outcome.ShouldStop {
		log.Warn("augmentation stopped by missing-release-tag policy",
			"untagged", result.UntaggedDeclarationCount)
	}

	// Step 4: Patch the doc model, gated on the rollup pass not aborting.
	if cfg.DocModel.Enabled && !outcome.ShouldStop {
		docResult := apimodel.Augment(cfg.DocModel.Path, extracted.Augmentations, r.deps.DryRun, log)
		result.DocModelAugmented = docResult.Success && docResult.AugmentedCount > 0
		result.Errors = append(result.Errors, docResult.Errors...)
		result.Warnings = append(result.Warnings, docResult.Warnings...)
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.deps.Log != nil {
		return r.deps.Log
	}
	return slog.Default()
}
