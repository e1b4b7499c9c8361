package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kattn/djgenetics/pkg/config"
	"github.com/kattn/djgenetics/pkg/logger"
	"github.com/kattn/djgenetics/pkg/midifile"
	"github.com/kattn/djgenetics/pkg/output"
	"github.com/kattn/djgenetics/pkg/pianoroll"
	"github.com/kattn/djgenetics/pkg/render"
)

// RollService converts between MIDI files and roll documents
type RollService struct{}

// NewRollService creates a new roll service
func NewRollService() *RollService {
	return &RollService{}
}

// Source names a roll to load: a MIDI file or a roll document
type Source struct {
	Path       string
	Instrument int
	// FS overrides the sampling rate; 0 means the document's rate for
	// roll documents and roll.fs for MIDI files
	FS float64
}

// IsMIDI reports whether path names a MIDI file
func IsMIDI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return true
	}
	return false
}

func defaultFS(fs float64) float64 {
	if fs != 0 {
		return fs
	}
	return config.GetFloat64("roll.fs")
}

// Load returns the matrix and sampling rate named by src
func (rs *RollService) Load(src Source) (*pianoroll.Matrix, float64, error) {
	if IsMIDI(src.Path) {
		fs := defaultFS(src.FS)
		logger.Debug("Decoding MIDI file", "path", src.Path, "instrument", src.Instrument, "fs", fs)
		m, err := midifile.DecodeFile(src.Path, src.Instrument, fs)
		if err != nil {
			return nil, 0, err
		}
		return m, fs, nil
	}

	logger.Debug("Loading roll document", "path", src.Path)
	doc, err := pianoroll.LoadDocument(src.Path)
	if err != nil {
		return nil, 0, err
	}
	m, err := doc.Matrix()
	if err != nil {
		return nil, 0, err
	}

	fs := src.FS
	if fs == 0 {
		fs = doc.FS
	}
	fs = defaultFS(fs)
	if !pianoroll.ValidSampleRate(fs) {
		return nil, 0, fmt.Errorf("%s: %w", src.Path, pianoroll.ErrInvalidSampleRate)
	}
	return m, fs, nil
}

// Decode samples an instrument of a MIDI file into a roll document at
// out, or prints a summary when out is empty.
func (rs *RollService) Decode(src Source, out string) error {
	m, fs, err := rs.Load(src)
	if err != nil {
		logger.Error("Failed to decode MIDI file", "path", src.Path, "error", err)
		return err
	}

	if out != "" {
		if err := pianoroll.NewDocument(m, fs).Save(out); err != nil {
			return err
		}
		logger.Info("Wrote roll document", "path", out, "steps", m.Steps())
		output.PrintSuccess("✓ Wrote %s (%d pitches × %d steps at %g steps/s)", out, m.Pitches(), m.Steps(), fs)
		return nil
	}

	return output.PrintRecord("Piano roll", summarize(m, fs))
}

func summarize(m *pianoroll.Matrix, fs float64) map[string]interface{} {
	record := map[string]interface{}{
		"pitches":  m.Pitches(),
		"steps":    m.Steps(),
		"fs":       fs,
		"duration": fmt.Sprintf("%.2fs", m.Duration(fs)),
	}
	if low, high, ok := m.PitchRange(); ok {
		record["range"] = fmt.Sprintf("%s-%s", pianoroll.NoteName(low), pianoroll.NoteName(high))
	} else {
		record["range"] = "silent"
	}
	return record
}

// EncodeOptions configures Encode
type EncodeOptions struct {
	Program              int
	Name                 string
	MergeVelocityChanges bool
}

// DefaultEncodeOptions reads the encoding defaults from config
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Program:              config.GetInt("midi.program"),
		MergeVelocityChanges: config.GetBool("encode.merge_velocity_changes"),
	}
}

func (o EncodeOptions) write() (midifile.WriteOptions, error) {
	if o.Program < 0 || o.Program > 127 {
		return midifile.WriteOptions{}, midifile.ErrInvalidProgram
	}
	return midifile.WriteOptions{
		Program:    midifile.Program(uint8(o.Program)),
		Name:       o.Name,
		Resolution: uint16(config.GetInt("midi.resolution")),
	}, nil
}

// Encode writes a roll as a MIDI file and prints its absolute path
func (rs *RollService) Encode(src Source, out string, opts EncodeOptions) (string, error) {
	m, fs, err := rs.Load(src)
	if err != nil {
		return "", err
	}
	if m.IsSilent() {
		output.PrintWarning("roll %s is silent; the MIDI file will hold no notes", src.Path)
	}

	wopts, err := opts.write()
	if err != nil {
		return "", err
	}

	logger.Debug("Encoding roll", "path", src.Path, "fs", fs, "program", wopts.Program)
	abs, err := midifile.EncodeFile(out, m, fs, pianoroll.EncodeOptions{
		MergeVelocityChanges: opts.MergeVelocityChanges,
	}, wopts)
	if err != nil {
		logger.Error("Failed to encode roll", "error", err)
		return "", err
	}

	logger.Info("Wrote MIDI file", "path", abs)
	fmt.Fprintln(output.Writer, abs)
	return abs, nil
}

// Notes prints the note events of a roll
func (rs *RollService) Notes(src Source, merge bool) ([]pianoroll.Note, error) {
	m, fs, err := rs.Load(src)
	if err != nil {
		return nil, err
	}

	notes, err := pianoroll.EncodeWithOptions(m, fs, pianoroll.EncodeOptions{MergeVelocityChanges: merge})
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			pianoroll.NoteName(int(n.Pitch)),
			fmt.Sprintf("%d", n.Pitch),
			fmt.Sprintf("%d", n.Velocity),
			fmt.Sprintf("%.3f", n.Start),
			fmt.Sprintf("%.3f", n.End),
		})
	}
	title := fmt.Sprintf("%d note%s", len(notes), pluralize(len(notes)))
	return notes, output.PrintList(title, notes, []string{"Note", "Pitch", "Velocity", "Start", "End"}, rows)
}

// Inspect lists the instruments of a MIDI file
func (rs *RollService) Inspect(path string) (*midifile.File, error) {
	f, err := midifile.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read MIDI file", "path", path, "error", err)
		return nil, err
	}

	rows := make([][]string, 0, len(f.Instruments))
	for i, inst := range f.Instruments {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			truncate(inst.Name, 24),
			fmt.Sprintf("%d", inst.Program),
			fmt.Sprintf("%d", inst.Channel+1),
			fmt.Sprintf("%t", inst.IsDrum),
			fmt.Sprintf("%d", len(inst.Notes)),
			fmt.Sprintf("%.2fs", inst.EndTime()),
		})
	}
	title := fmt.Sprintf("%s: %d instrument%s", filepath.Base(path), len(f.Instruments), pluralize(len(f.Instruments)))
	return f, output.PrintList(title, f.Instruments,
		[]string{"Index", "Name", "Program", "Channel", "Drum", "Notes", "End"}, rows)
}

// Render draws a roll to a PNG at out, or to the terminal when out is empty
func (rs *RollService) Render(src Source, out string, width int) error {
	m, fs, err := rs.Load(src)
	if err != nil {
		return err
	}

	if out == "" {
		return render.Terminal(output.Writer, m, fs, width)
	}

	opts := render.Options{
		CellWidth:  config.GetFloat64("render.cell_width"),
		CellHeight: config.GetFloat64("render.cell_height"),
	}
	if err := render.PNG(m, fs, out, opts); err != nil {
		return err
	}
	logger.Info("Rendered piano roll", "path", out)
	output.PrintSuccess("✓ Rendered %s", out)
	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func truncate(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-1]) + "…"
}
