package api

import (
	"cmp"
	"slices"
	"time"

	"github.com/kattn/djgenetics/pkg/client"
	"github.com/kattn/djgenetics/pkg/logger"
	"github.com/kattn/djgenetics/pkg/pianoroll"
)

const (
	// PatternTempo is the tempo of every published pattern, matching the
	// tempo written to MIDI files
	PatternTempo = 120
	// MaxPatternName is the longest name the API accepts
	MaxPatternName = 100
)

// Event types of a pattern
const (
	EventNoteOn  = "note_on"
	EventNoteOff = "note_off"
)

// MIDIEvent represents a single MIDI event
type MIDIEvent struct {
	Time     float64 `json:"time"`
	Type     string  `json:"type"`
	Note     int     `json:"note"`
	Velocity int     `json:"velocity"`
	Channel  int     `json:"channel"`
}

// MIDIPattern is a pattern as stored by the API
type MIDIPattern struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Events        []MIDIEvent `json:"events"`
	TotalTime     float64     `json:"total_time"`
	Tempo         int         `json:"tempo"`
	TimeSignature [2]int      `json:"time_signature"`
	IsPublic      bool        `json:"is_public"`
	CreatedAt     time.Time   `json:"created_at"`
}

// CreatePatternRequest is the body of a pattern upload
type CreatePatternRequest struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Events        []MIDIEvent `json:"events"`
	TotalTime     float64     `json:"total_time"`
	Tempo         int         `json:"tempo"`
	TimeSignature [2]int      `json:"time_signature"`
	IsPublic      bool        `json:"is_public"`
}

// NewPatternRequest turns notes into note_on/note_off event pairs in
// time order. At equal times note_off comes first.
func NewPatternRequest(name, description string, notes []pianoroll.Note, isPublic bool) *CreatePatternRequest {
	events := make([]MIDIEvent, 0, len(notes)*2)
	for _, n := range notes {
		events = append(events,
			MIDIEvent{Time: n.Start, Type: EventNoteOn, Note: int(n.Pitch), Velocity: int(n.Velocity)},
			MIDIEvent{Time: n.End, Type: EventNoteOff, Note: int(n.Pitch)},
		)
	}
	slices.SortStableFunc(events, func(a, b MIDIEvent) int {
		if c := cmp.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		if a.Type != b.Type {
			if a.Type == EventNoteOff {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Note, b.Note)
	})

	return &CreatePatternRequest{
		Name:          name,
		Description:   description,
		Events:        events,
		TotalTime:     pianoroll.EndTime(notes),
		Tempo:         PatternTempo,
		TimeSignature: [2]int{4, 4},
		IsPublic:      isPublic,
	}
}

// CreateMIDIPattern uploads a pattern
func CreateMIDIPattern(req *CreatePatternRequest) (*MIDIPattern, error) {
	logger.Debug("Creating MIDI pattern", "name", req.Name, "events", len(req.Events))

	var response struct {
		Pattern MIDIPattern `json:"pattern"`
	}

	resp, err := client.GetClient().
		R().
		SetBody(req).
		SetResult(&response).
		Post("/api/v1/midi")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return &response.Pattern, nil
}
