// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/dts-augment/internal/config"
	gitpkg "github.com/petar-djukic/dts-augment/internal/git"
	"github.com/petar-djukic/dts-augment/pkg/augment"
)

// newRunCmd creates the "run" command.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan sources and augment the rollups",
		Long:  "Run resolves the API Extractor config, scans the project for ambient module augmentation blocks, and merges them into the configured rollup files.",
		RunE:  runAugment,
	}

	cmd.Flags().Bool("dry-run", false, "Report changes without writing any file")
	cmd.Flags().StringArray("include", nil, "Source file glob to scan (repeatable; default **/*.ts)")
	cmd.Flags().StringArray("exclude", nil, "Source file glob to skip (repeatable)")

	return cmd
}

// runAugment executes the augmentation pipeline.
func runAugment(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	include, _ := cmd.Flags().GetStringArray("include")
	exclude, _ := cmd.Flags().GetStringArray("exclude")

	cfg := augment.Config{
		ConfigPath: viper.GetString("config"),
		DryRun:     dryRun,
		Include:    include,
		Exclude:    exclude,
		Logger:     newLogger(),
	}

	a, err := augment.New(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := a.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result != nil {
			printResult(result)
		}
		return err
	}

	printResult(result)
	if !result.Success {
		return fmt.Errorf("augmentation completed with %d error(s)", len(result.Errors))
	}
	return nil
}

// newLogger builds the CLI logger. Logs go to stderr so stdout stays
// reserved for the JSON result.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// printResult outputs the result as JSON to stdout.
func printResult(result *augment.Result) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// newRestoreCmd creates the "restore" command.
func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore augmented files from git HEAD",
		Long:  "Restore rewrites every configured rollup file, and the doc model when enabled, with its committed content so the augmentation can run again from a clean slate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			var paths []string
			for _, level := range cfg.Rollups.Levels() {
				paths = append(paths, cfg.Rollups.ForLevel(level))
			}
			if cfg.DocModel.Enabled {
				paths = append(paths, cfg.DocModel.Path)
			}
			paths = existingOnly(paths)
			if len(paths) == 0 {
				fmt.Println("Nothing to restore; no augmented files on disk.")
				return nil
			}

			repo, err := gitpkg.Open(gitpkg.Config{WorkDir: cfg.ProjectFolder})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			restored, err := repo.RestoreFiles(paths)
			for _, path := range restored {
				fmt.Printf("Restored %s\n", path)
			}
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			fmt.Printf("Restored %d file(s) from HEAD.\n", len(restored))
			return nil
		},
	}
}

// existingOnly filters out configured paths that were never created.
func existingOnly(paths []string) []string {
	var out []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			out = append(out, path)
		}
	}
	return out
}
