package midifile

import (
	"fmt"

	"github.com/kattn/djgenetics/pkg/pianoroll"
)

// DrumChannel is the zero-based General MIDI percussion channel
const DrumChannel = 9

// Instrument is one voice of a MIDI file: the notes of a single
// (track, channel, program) combination, ordered by start time.
type Instrument struct {
	Name    string           `json:"name"`
	Program uint8            `json:"program"`
	Channel uint8            `json:"channel"`
	IsDrum  bool             `json:"is_drum"`
	Track   int              `json:"track"`
	Notes   []pianoroll.Note `json:"notes"`
}

// NewInstrument wraps encoded notes in an instrument ready to be written
func NewInstrument(name string, program uint8, notes []pianoroll.Note) *Instrument {
	sorted := make([]pianoroll.Note, len(notes))
	copy(sorted, notes)
	pianoroll.SortNotes(sorted)

	return &Instrument{
		Name:    name,
		Program: program,
		Notes:   sorted,
	}
}

// EndTime returns the time the last note ends
func (i *Instrument) EndTime() float64 {
	return pianoroll.EndTime(i.Notes)
}

// PianoRoll samples the instrument at fs steps per second into a matrix
// with one row per MIDI pitch.
func (i *Instrument) PianoRoll(fs float64) (*pianoroll.Matrix, error) {
	return pianoroll.Rasterize(i.Notes, fs, pianoroll.NumPitches)
}

// File is a parsed MIDI file
type File struct {
	Resolution  uint16        `json:"resolution"`
	Instruments []*Instrument `json:"instruments"`
}

// Instrument returns the instrument at index, failing with
// ErrInstrumentIndex when there is no such instrument.
func (f *File) Instrument(index int) (*Instrument, error) {
	if index < 0 || index >= len(f.Instruments) {
		return nil, &IndexError{Index: index, Count: len(f.Instruments)}
	}
	return f.Instruments[index], nil
}

// EndTime returns the end of the latest note across all instruments
func (f *File) EndTime() float64 {
	var end float64
	for _, inst := range f.Instruments {
		end = max(end, inst.EndTime())
	}
	return end
}

// IndexError reports a request for an instrument the file does not have
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: requested %d, file has %d", ErrInstrumentIndex, e.Index, e.Count)
}

// Is makes errors.Is(err, ErrInstrumentIndex) match
func (e *IndexError) Is(target error) bool {
	return target == ErrInstrumentIndex
}
