// Package handlers exposes the piano-roll conversions over HTTP.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kattn/djgenetics/pkg/midifile"
)

const (
	// DefaultFS is the sampling rate used when a request names none
	DefaultFS = 5.0
	// MaxUploadSize bounds uploaded MIDI files and roll documents
	MaxUploadSize = 8 << 20
	// DefaultMaxSteps bounds decoded rolls: over five hours at 5 steps/s
	DefaultMaxSteps = 100_000
)

// Config holds the defaults applied to conversion requests
type Config struct {
	FS         float64
	Program    uint8
	Resolution uint16
	// MaxSteps caps the time steps of a decoded roll. A small MIDI file
	// can describe hours of music, so the cap is checked before sampling.
	MaxSteps int
}

// DefaultConfig returns the defaults used by NewHandlers
func DefaultConfig() Config {
	return Config{
		FS:         DefaultFS,
		Program:    midifile.DefaultProgram,
		Resolution: midifile.DefaultResolution,
		MaxSteps:   DefaultMaxSteps,
	}
}

// Handlers contains the roll conversion endpoints
type Handlers struct {
	cfg Config
}

// NewHandlers creates the handlers, filling unset fields of cfg with
// their defaults
func NewHandlers(cfg Config) *Handlers {
	d := DefaultConfig()
	if cfg.FS <= 0 {
		cfg.FS = d.FS
	}
	if cfg.Resolution == 0 {
		cfg.Resolution = d.Resolution
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = d.MaxSteps
	}
	return &Handlers{cfg: cfg}
}

// RegisterRoutes mounts the conversion endpoints under /api/v1
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api/v1")
	{
		api.POST("/midi/inspect", h.InspectMIDI)

		rolls := api.Group("/rolls")
		rolls.POST("/decode", h.DecodeRoll)
		rolls.POST("/notes", h.RollNotes)
		rolls.POST("/encode", h.EncodeRoll)
	}
}
