// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the imgconv CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the imgconv CLI.
var rootCmd = &cobra.Command{
	Use:   "imgconv",
	Short: "Batch converter between PDF, JPG, and TIFF",
	Long: `imgconv converts files between PDF, JPG, and TIFF. PDF pages rasterize
into one image per page, image lists merge into a single PDF, and JPG and
TIFF re-encode one-to-one. Batches continue past individual failures and
report a per-file summary.

Use "convert" for one-shot batches, "serve" for the HTTP backend, and
"history" to inspect past runs.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./imgconv.yaml or ~/.config/imgconv/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("imgconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "imgconv"))
		}
	}

	viper.SetEnvPrefix("IMGCONV")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
