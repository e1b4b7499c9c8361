package midifile

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/kattn/djgenetics/pkg/pianoroll"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// DefaultProgram is the General MIDI program written when none is given
	DefaultProgram = 2
	// DefaultResolution is the number of ticks per quarter note
	DefaultResolution = 480
	// MaxResolution is the largest metric resolution a MIDI header holds
	MaxResolution = 0x7FFF
)

// WriteOptions configures the written file
type WriteOptions struct {
	// Program replaces the instrument's own program when set. Encode
	// writes DefaultProgram when it is nil.
	Program    *uint8
	Name       string // Track name; falls back to the instrument name
	Resolution uint16 // Ticks per quarter note; 0 means DefaultResolution
}

// Program returns p as a WriteOptions.Program value
func Program(p uint8) *uint8 {
	return &p
}

// DefaultWriteOptions returns the options used when none are given
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Resolution: DefaultResolution}
}

func (o WriteOptions) validate() error {
	if o.Program != nil && *o.Program > 127 {
		return ErrInvalidProgram
	}
	if o.Resolution > MaxResolution {
		return ErrResolution
	}
	return nil
}

// program picks the program written for inst
func (o WriteOptions) program(inst *Instrument) (uint8, error) {
	p := inst.Program
	if o.Program != nil {
		p = *o.Program
	}
	if p > 127 {
		return 0, ErrInvalidProgram
	}
	return p, nil
}

// resolutionFor returns the resolution to write a roll sampled at fs: the
// requested one, raised until a tick is at most half a step so every step
// boundary survives rounding to ticks.
func resolutionFor(fs float64, requested uint16) (uint16, error) {
	if requested == 0 {
		requested = DefaultResolution
	}
	// ticks per second = resolution * tempo / 60
	need := math.Ceil(2 * fs * 60 / DefaultTempo)
	if float64(requested) >= need {
		return requested, nil
	}
	if need > MaxResolution {
		return 0, fmt.Errorf("%w: %g steps/s needs %g ticks per quarter note", ErrSampleRateTooHigh, fs, need)
	}
	return uint16(need), nil
}

type timedMessage struct {
	tick  uint32
	on    bool
	pitch uint8
	msg   midi.Message
}

// Marshal renders an instrument as a format 1 standard MIDI file: a
// conductor track with tempo and time signature followed by one track
// holding the program change and notes.
func Marshal(inst *Instrument, opts WriteOptions) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	program, err := opts.program(inst)
	if err != nil {
		return nil, err
	}
	if opts.Resolution == 0 {
		opts.Resolution = DefaultResolution
	}

	resolution := smf.MetricTicks(opts.Resolution)
	s := smf.New()
	s.TimeFormat = resolution

	endTick := secondsToTicks(inst.EndTime(), DefaultTempo, resolution)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(DefaultTempo))
	conductor.Add(0, smf.MetaTimeSig(4, 2, 24, 8))
	conductor.Close(endTick)
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add conductor track: %w", err)
	}

	channel := inst.Channel
	if inst.IsDrum {
		channel = DrumChannel
	}

	events := make([]timedMessage, 0, len(inst.Notes)*2)
	for _, n := range inst.Notes {
		events = append(events,
			timedMessage{
				tick:  secondsToTicks(n.Start, DefaultTempo, resolution),
				on:    true,
				pitch: n.Pitch,
				msg:   midi.NoteOn(channel, n.Pitch, n.Velocity),
			},
			timedMessage{
				tick:  secondsToTicks(n.End, DefaultTempo, resolution),
				pitch: n.Pitch,
				msg:   midi.NoteOff(channel, n.Pitch),
			},
		)
	}
	// At equal ticks note-offs go first so back-to-back notes of the same
	// pitch do not cancel each other.
	slices.SortStableFunc(events, func(a, b timedMessage) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		if a.on != b.on {
			if a.on {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.pitch, b.pitch)
	})

	var track smf.Track
	name := opts.Name
	if name == "" {
		name = inst.Name
	}
	if name != "" {
		track.Add(0, smf.MetaTrackSequenceName(name))
	}
	track.Add(0, midi.ProgramChange(channel, program))

	var lastTick uint32
	for _, ev := range events {
		track.Add(ev.tick-lastTick, ev.msg)
		lastTick = ev.tick
	}
	track.Close(endTick - lastTick)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add instrument track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders an instrument to w
func Write(w io.Writer, inst *Instrument, opts WriteOptions) error {
	data, err := Marshal(inst, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile renders an instrument to the file at path
func WriteFile(path string, inst *Instrument, opts WriteOptions) error {
	data, err := Marshal(inst, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// secondsToTicks converts seconds to the nearest tick at a fixed tempo
func secondsToTicks(seconds, bpm float64, resolution smf.MetricTicks) uint32 {
	ticksPerSecond := (bpm / 60.0) * float64(resolution)
	return uint32(math.Round(seconds * ticksPerSecond))
}

// Encode converts a matrix to an instrument and renders it as a MIDI file.
// The resolution is raised when fs is too fine for it; ErrSampleRateTooHigh
// means no MIDI resolution can hold the steps apart.
func Encode(m *pianoroll.Matrix, fs float64, enc pianoroll.EncodeOptions, opts WriteOptions) ([]byte, error) {
	notes, err := pianoroll.EncodeWithOptions(m, fs, enc)
	if err != nil {
		return nil, err
	}
	if opts.Resolution, err = resolutionFor(fs, opts.Resolution); err != nil {
		return nil, err
	}

	program := uint8(DefaultProgram)
	if opts.Program != nil {
		program = *opts.Program
	}
	return Marshal(NewInstrument(opts.Name, program, notes), opts)
}

// EncodeFile writes a matrix as a MIDI file and returns its absolute path
func EncodeFile(path string, m *pianoroll.Matrix, fs float64, enc pianoroll.EncodeOptions, opts WriteOptions) (string, error) {
	data, err := Encode(m, fs, enc, opts)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}
