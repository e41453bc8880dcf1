// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command dts-augment merges ambient module augmentations into API Extractor
// rollup files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dts-augment",
		Short: "Merge ambient module augmentations into declaration rollups",
		Long:  "dts-augment scans TypeScript sources for declare module blocks, classifies each declaration by its release tag, and appends the blocks to the per-tier rollup files produced by API Extractor.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("config", "api-extractor.json", "Path to the API Extractor config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	// Bind flags to viper.
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Env vars: DTS_AUGMENT_CONFIG, DTS_AUGMENT_VERBOSE.
	viper.SetEnvPrefix("DTS_AUGMENT")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".dts-augment")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print dts-augment version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dts-augment %s\n", version)
		},
	}
}
