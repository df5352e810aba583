// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the imagecrypt CLI: locate images on
// the local filesystem by approximate name and lock them into a vault.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imagecrypt/internal/logger"
	"github.com/pdiddy/imagecrypt/internal/secrets"
	"github.com/pdiddy/imagecrypt/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logCloser is the open log file, if --log-file was given.
var logCloser io.Closer

// rootCmd is the base command for the imagecrypt CLI.
var rootCmd = &cobra.Command{
	Use:   "imagecrypt",
	Short: "Find images by approximate name and lock them into a vault",
	Long: `imagecrypt searches your desktop, pictures, documents, photos and downloads
directories for image files whose name resembles a half-remembered one, and
keeps chosen images inside a password-gated local vault.

Use "locate" to build a quick-pick list and "vault" to lock, list, unlock and
delete images.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./imagecrypt.yaml or ~/.config/imagecrypt/imagecrypt.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug details to stderr")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to this file instead of stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("imagecrypt")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "imagecrypt"))
		}
	}

	viper.SetDefault("locate.max_results", types.DefaultMaxResults)
	viper.SetDefault("locate.threshold", types.DefaultThreshold)
	viper.SetDefault("locate.extensions", types.DefaultExtensions)

	viper.SetEnvPrefix("IMAGECRYPT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Named("config").Debugf("using config file %s", viper.ConfigFileUsed())
	}
}

func setupLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	if err := logger.Configure(level, nil); err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		c, err := logger.SetupFile(path)
		if err != nil {
			return err
		}
		logCloser = c
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
