// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the purity-engine CLI.
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

// rootCmd is the base command for the purity-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "purity-engine",
	Short: "Activity and dose deviations caused by material impurities",
	Long: `purity-engine estimates how a deviation in the impurity content of an
irradiated component changes its activity and the shutdown dose rate around it.

The calc command runs the whole pipeline: reaction rates, activation and decay
chains over an irradiation scenario, dose conversion and workstation doses.
Every calc run gets its own output directory and is recorded in a local
results database that the results command queries.

Flags of calc can also be set in a config file (./purity-engine.yaml or
~/.config/purity-engine/config.yaml) or through PURITY_ENGINE_* variables.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./purity-engine.yaml or ~/.config/purity-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("purity-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "purity-engine"))
		}
	}

	viper.SetEnvPrefix("PURITY_ENGINE")
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
