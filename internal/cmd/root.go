package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kattn/djgenetics/pkg/config"
	clierrors "github.com/kattn/djgenetics/pkg/errors"
	"github.com/kattn/djgenetics/pkg/logger"
	"github.com/kattn/djgenetics/pkg/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "djgenetics",
	Short: "Piano-roll and MIDI conversion toolkit",
	Long: `djgenetics converts between time-quantized piano-roll matrices and
MIDI files. Sample a MIDI instrument into a roll, render it, and turn
rolls produced by a generative search back into playable MIDI.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Set("output.format", outputFmt)
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprint(os.Stderr, clierrors.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/djgenetics/config.toml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "output", "text", "Output format: text, json, table")

	rootCmd.AddCommand(versionCmd)
}
