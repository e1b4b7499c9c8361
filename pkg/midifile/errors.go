package midifile

// Error is a MIDI file error
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrFileFormat      Error = "midi: not a valid standard MIDI file"
	ErrInstrumentIndex Error = "midi: instrument index out of range"
	ErrTimeFormat      Error = "midi: only metric (ticks per quarter note) timing is supported"
	ErrInvalidProgram  Error = "midi: program must be between 0 and 127"
	ErrResolution      Error = "midi: resolution must be at most 32767 ticks per quarter note"
	// ErrSampleRateTooHigh is returned when a step is shorter than the
	// finest tick a MIDI file can express at the written tempo
	ErrSampleRateTooHigh Error = "midi: sampling rate is too fine for the tick resolution"
)
