package cmd

import (
	"github.com/kattn/djgenetics/pkg/config"
	clierrors "github.com/kattn/djgenetics/pkg/errors"
	"github.com/kattn/djgenetics/pkg/service"
	"github.com/spf13/cobra"
)

var (
	rollInstrument int
	rollFS         float64
	rollOut        string

	encodeProgram int
	encodeName    string
	mergeChanges  bool

	renderWidth int
)

// source builds the roll source from the shared flags, falling back to
// roll.instrument when -i was not given
func source(cmd *cobra.Command, path string) service.Source {
	instrument := rollInstrument
	if !cmd.Flags().Changed("instrument") {
		instrument = config.GetInt("roll.instrument")
	}
	return service.Source{Path: path, Instrument: instrument, FS: rollFS}
}

var decodeCmd = &cobra.Command{
	Use:   "decode <file.mid>",
	Short: "Sample a MIDI instrument into a piano roll",
	Long: `Decode one instrument of a MIDI file into a piano-roll matrix with
one row per MIDI pitch and fs columns per second. With -o the roll is
written as a JSON or YAML document, otherwise a summary is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewRollService().Decode(source(cmd, args[0]), rollOut)
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <roll.json>",
	Short: "Write a piano roll as a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rollOut == "" {
			return clierrors.ValidationError("output", "pass -o <file.mid>")
		}
		_, err := service.NewRollService().Encode(source(cmd, args[0]), rollOut, encodeOptions(cmd))
		return err
	},
}

func encodeOptions(cmd *cobra.Command) service.EncodeOptions {
	opts := service.DefaultEncodeOptions()
	if cmd.Flags().Changed("program") {
		opts.Program = encodeProgram
	}
	if cmd.Flags().Changed("merge-velocity-changes") {
		opts.MergeVelocityChanges = mergeChanges
	}
	opts.Name = encodeName
	return opts
}

var notesCmd = &cobra.Command{
	Use:   "notes <roll.json|file.mid>",
	Short: "List the note events of a piano roll",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewRollService().Notes(source(cmd, args[0]), encodeOptions(cmd).MergeVelocityChanges)
		return err
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "List the instruments of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewRollService().Inspect(args[0])
		return err
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <roll.json|file.mid>",
	Short: "Draw a piano roll as a PNG or in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewRollService().Render(source(cmd, args[0]), rollOut, renderWidth)
	},
}

func addSourceFlags(c *cobra.Command) {
	c.Flags().IntVarP(&rollInstrument, "instrument", "i", 0, "Instrument index in the MIDI file")
	c.Flags().Float64Var(&rollFS, "fs", 0, "Sampling rate in steps per second (default: roll.fs or the document's)")
}

func init() {
	for _, c := range []*cobra.Command{decodeCmd, encodeCmd, notesCmd, renderCmd} {
		addSourceFlags(c)
	}

	decodeCmd.Flags().StringVarP(&rollOut, "out", "o", "", "Write the roll document here (.json, .yaml)")
	encodeCmd.Flags().StringVarP(&rollOut, "out", "o", "", "MIDI file to write")
	renderCmd.Flags().StringVarP(&rollOut, "out", "o", "", "Write a PNG here instead of drawing in the terminal")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Terminal columns (default: detected)")

	encodeCmd.Flags().IntVar(&encodeProgram, "program", 2, "General MIDI program (default: midi.program)")
	encodeCmd.Flags().StringVar(&encodeName, "name", "", "Track name")
	for _, c := range []*cobra.Command{encodeCmd, notesCmd} {
		c.Flags().BoolVar(&mergeChanges, "merge-velocity-changes", false,
			"Keep a note sounding across velocity changes instead of restriking it")
	}

	rootCmd.AddCommand(decodeCmd, encodeCmd, notesCmd, inspectCmd, renderCmd)
}
