package pianoroll

// Error is a piano-roll validation error
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNilMatrix         Error = "pianoroll: matrix is nil"
	ErrInvalidSampleRate Error = "pianoroll: sampling rate must be a positive finite number"
	ErrVelocityRange     Error = "pianoroll: velocity must be between 0 and 127"
	ErrRaggedMatrix      Error = "pianoroll: all rows must have the same number of time steps"
	ErrInvalidShape      Error = "pianoroll: matrix dimensions must not be negative"
	ErrOrientation       Error = "pianoroll: orientation must be 'pitch-major' or 'time-major'"
	ErrTooManyPitches    Error = "pianoroll: matrix has more than 128 pitch rows"
	ErrTooLarge          Error = "pianoroll: roll has too many time steps"
)
