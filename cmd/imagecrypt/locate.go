// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imagecrypt/internal/locate"
	"github.com/pdiddy/imagecrypt/pkg/types"
)

var locateCmd = &cobra.Command{
	Use:   "locate <query>",
	Short: "Find image files whose name resembles the query",
	Long: `Searches the configured roots breadth-first, one walker per root, and prints
the best matches ranked by name similarity. The search stops early once enough
matches are found, so the list is a quick-pick sample rather than every match.

Roots default to your desktop, pictures, documents, photos and downloads
directories. Use --root to search elsewhere.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().StringArray("root", nil, "directory to search (repeatable)")
	locateCmd.Flags().Int("max-results", types.DefaultMaxResults, "maximum number of matches")
	locateCmd.Flags().Float64("threshold", types.DefaultThreshold, "minimum similarity, exclusive (0-1)")
	locateCmd.Flags().StringSlice("ext", nil, "admissible extensions (default .jpg,.jpeg,.png,.svg,.bmp)")
	locateCmd.Flags().Duration("timeout", 0, "stop searching after this long and report what was found")
	locateCmd.Flags().Bool("sequential", false, "walk roots one after another")
	locateCmd.Flags().Bool("json", false, "print matched paths as a JSON array")
	locateCmd.Flags().String("save", "", "write the result to a YAML file")
	locateCmd.Flags().String("load", "", "print a previously saved result instead of searching")
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()

	if loadPath, _ := cmd.Flags().GetString("load"); loadPath != "" {
		rf, err := locate.ReadResultFile(loadPath)
		if err != nil {
			return err
		}
		if asJSON {
			return locate.FormatJSON(rf.Output(), w)
		}
		locate.FormatTable(rf.Output(), w)
		return nil
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("a non-empty query is required")
	}

	cfg, err := locateConfig(cmd)
	if err != nil {
		return err
	}

	out, err := locate.Search(cmd.Context(), args[0], cfg)
	if err != nil {
		return fmt.Errorf("locating %q: %w", args[0], err)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := locate.WriteResultFile(savePath, cfg, out); err != nil {
			return err
		}
	}

	if asJSON {
		return locate.FormatJSON(out, w)
	}
	locate.FormatTable(out, w)
	return nil
}

// locateConfig reads the locate section of the config and applies any flags
// the user set explicitly on top.
func locateConfig(cmd *cobra.Command) (types.LocateConfig, error) {
	var cfg types.LocateConfig
	if err := viper.UnmarshalKey("locate", &cfg); err != nil {
		return cfg, fmt.Errorf("reading locate config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Roots, _ = flags.GetStringArray("root")
	}
	if flags.Changed("max-results") {
		cfg.MaxResults, _ = flags.GetInt("max-results")
	}
	if flags.Changed("threshold") {
		cfg.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("ext") {
		cfg.Extensions, _ = flags.GetStringSlice("ext")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("sequential") {
		cfg.Sequential, _ = flags.GetBool("sequential")
	}

	if cfg.Threshold >= 1 {
		return cfg, fmt.Errorf("threshold %.2f leaves nothing to match; use a value below 1", cfg.Threshold)
	}
	return cfg.WithDefaults(), nil
}
