package midifile

import (
	"github.com/kattn/djgenetics/pkg/pianoroll"
)

// Decode parses a MIDI file and samples one of its instruments at fs
// steps per second. It fails with ErrFileFormat when data is not a MIDI
// file and with ErrInstrumentIndex when the instrument does not exist.
func Decode(data []byte, instrument int, fs float64) (*pianoroll.Matrix, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return f.PianoRoll(instrument, fs)
}

// DecodeFile is Decode for a file on disk
func DecodeFile(path string, instrument int, fs float64) (*pianoroll.Matrix, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.PianoRoll(instrument, fs)
}

// PianoRoll samples the instrument at index
func (f *File) PianoRoll(instrument int, fs float64) (*pianoroll.Matrix, error) {
	inst, err := f.Instrument(instrument)
	if err != nil {
		return nil, err
	}
	return inst.PianoRoll(fs)
}
