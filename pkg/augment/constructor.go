// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package augment

import (
	"context"
	"fmt"
	"os"

	internalaugment "github.com/petar-djukic/dts-augment/internal/augment"
)

// New validates the config and returns a ready-to-use Augmenter. It does not
// touch the project; scanning and rollup writes happen in Run.
func New(cfg Config) (Augmenter, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	runner := internalaugment.NewRunner(internalaugment.Deps{
		ConfigPath: cfg.ConfigPath,
		DryRun:     cfg.DryRun,
		Include:    cfg.Include,
		Exclude:    cfg.Exclude,
		Log:        cfg.Logger,
	})

	return &augmenterAdapter{runner: runner}, nil
}

// augmenterAdapter adapts internal/augment.Runner to the public Augmenter
// interface.
type augmenterAdapter struct {
	runner *internalaugment.Runner
}

func (a *augmenterAdapter) Run(ctx context.Context) (*Result, error) {
	ir, err := a.runner.Run(ctx)
	if ir == nil {
		return &Result{}, err
	}
	return &Result{
		AugmentedFiles:           ir.AugmentedFiles,
		SkippedFiles:             ir.SkippedFiles,
		Previews:                 ir.Previews,
		Errors:                   ir.Errors,
		Warnings:                 ir.Warnings,
		AugmentationCount:        ir.AugmentationCount,
		DeclarationCount:         ir.DeclarationCount,
		UntaggedDeclarationCount: ir.UntaggedDeclarationCount,
		DocModelAugmented:        ir.DocModelAugmented,
		Success:                  ir.Success,
	}, err
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.ConfigPath == "" {
		return fmt.Errorf("ConfigPath is required")
	}
	if info, err := os.Stat(cfg.ConfigPath); err != nil || info.IsDir() {
		return fmt.Errorf("ConfigPath %q does not exist or is not a file", cfg.ConfigPath)
	}
	return nil
}
