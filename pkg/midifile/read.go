package midifile

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/kattn/djgenetics/pkg/pianoroll"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultTempo is the tempo assumed until the first tempo meta event
const DefaultTempo = 120.0

// ReadFile parses the MIDI file at path
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Read parses a MIDI file from r
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a standard MIDI file into instruments
func Parse(data []byte) (*File, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrFileFormat, ErrTimeFormat)
	}

	tm := newTempoMap(s.Tracks, ticks.Resolution())
	f := &File{Resolution: ticks.Resolution()}
	for i, track := range s.Tracks {
		f.Instruments = append(f.Instruments, readTrack(i, track, tm)...)
	}

	for _, inst := range f.Instruments {
		pianoroll.SortNotes(inst.Notes)
	}
	return f, nil
}

type instrumentKey struct {
	channel uint8
	program uint8
}

type openKey struct {
	channel uint8
	pitch   uint8
}

type openNote struct {
	tick     int64
	velocity uint8
	program  uint8
}

// readTrack pairs note-ons with note-offs. A note-off closes every open
// note of its channel and pitch that started before the current tick;
// notes that started on the same tick stay open.
func readTrack(index int, track smf.Track, tm *tempoMap) []*Instrument {
	var (
		name       string
		tick       int64
		programs   [16]uint8
		open       = make(map[openKey][]openNote)
		byKey      = make(map[instrumentKey]*Instrument)
		instrument []*Instrument
	)

	lookup := func(channel, program uint8) *Instrument {
		key := instrumentKey{channel: channel, program: program}
		if inst, ok := byKey[key]; ok {
			return inst
		}
		inst := &Instrument{
			Program: program,
			Channel: channel,
			IsDrum:  channel == DrumChannel,
			Track:   index,
		}
		byKey[key] = inst
		instrument = append(instrument, inst)
		return inst
	}

	closeNotes := func(channel, pitch uint8) {
		key := openKey{channel: channel, pitch: pitch}
		var keep []openNote
		for _, n := range open[key] {
			if n.tick == tick {
				keep = append(keep, n)
				continue
			}
			inst := lookup(channel, n.program)
			inst.Notes = append(inst.Notes, pianoroll.Note{
				Pitch:    pitch,
				Velocity: n.velocity,
				Start:    tm.seconds(n.tick),
				End:      tm.seconds(tick),
			})
		}
		if len(keep) > 0 {
			open[key] = keep
		} else {
			delete(open, key)
		}
	}

	for _, ev := range track {
		tick += int64(ev.Delta)
		msg := ev.Message

		var text string
		if msg.GetMetaTrackName(&text) && name == "" {
			name = text
			continue
		}

		var channel, key, velocity, program uint8
		switch {
		case msg.GetProgramChange(&channel, &program):
			programs[channel] = program
		case msg.GetNoteStart(&channel, &key, &velocity):
			lookup(channel, programs[channel])
			k := openKey{channel: channel, pitch: key}
			open[k] = append(open[k], openNote{tick: tick, velocity: velocity, program: programs[channel]})
		case msg.GetNoteEnd(&channel, &key):
			// Covers note-on with velocity 0
			closeNotes(channel, key)
		}
	}

	var out []*Instrument
	for _, inst := range instrument {
		if len(inst.Notes) == 0 {
			continue
		}
		inst.Name = name
		out = append(out, inst)
	}
	return out
}

type tempoChange struct {
	tick    int64
	seconds float64 // Absolute time of the change
	bpm     float64
}

// tempoMap converts absolute ticks to seconds across tempo changes
type tempoMap struct {
	resolution float64
	changes    []tempoChange
}

func newTempoMap(tracks []smf.Track, resolution uint16) *tempoMap {
	var raw []tempoChange
	for _, track := range tracks {
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				raw = append(raw, tempoChange{tick: tick, bpm: bpm})
			}
		}
	}
	slices.SortStableFunc(raw, func(a, b tempoChange) int {
		return cmp.Compare(a.tick, b.tick)
	})

	tm := &tempoMap{
		resolution: float64(resolution),
		changes:    []tempoChange{{tick: 0, seconds: 0, bpm: DefaultTempo}},
	}
	for _, c := range raw {
		last := tm.changes[len(tm.changes)-1]
		c.seconds = last.seconds + tm.span(c.tick-last.tick, last.bpm)
		if c.tick == last.tick {
			tm.changes[len(tm.changes)-1] = c
			continue
		}
		tm.changes = append(tm.changes, c)
	}
	return tm
}

func (tm *tempoMap) span(ticks int64, bpm float64) float64 {
	return float64(ticks) * 60 / (bpm * tm.resolution)
}

func (tm *tempoMap) seconds(tick int64) float64 {
	i, found := slices.BinarySearchFunc(tm.changes, tick, func(c tempoChange, t int64) int {
		return cmp.Compare(c.tick, t)
	})
	if !found {
		i--
	}
	c := tm.changes[i]
	return c.seconds + tm.span(tick-c.tick, c.bpm)
}
