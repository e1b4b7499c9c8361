package pianoroll

import (
	"cmp"
	"fmt"
	"slices"
)

// Note is one sounding interval inferred from a run of non-zero cells
type Note struct {
	Pitch    uint8   `json:"pitch"`    // MIDI pitch (0-127)
	Velocity uint8   `json:"velocity"` // 1-127
	Start    float64 `json:"start"`    // Seconds
	End      float64 `json:"end"`      // Seconds, always > Start
}

// Duration returns the note length in seconds
func (n Note) Duration() float64 {
	return n.End - n.Start
}

func (n Note) String() string {
	return fmt.Sprintf("%s vel=%d [%.3fs, %.3fs)", NoteName(int(n.Pitch)), n.Velocity, n.Start, n.End)
}

// SortNotes orders notes by start time, then pitch. Equal keys keep their
// relative order.
func SortNotes(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Pitch, b.Pitch)
	})
}

// EndTime returns the latest note end, or 0 for no notes
func EndTime(notes []Note) float64 {
	var end float64
	for _, n := range notes {
		end = max(end, n.End)
	}
	return end
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific pitch name, with MIDI 60 = C4.
func NoteName(pitch int) string {
	if pitch < 0 {
		return fmt.Sprintf("%d", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}
