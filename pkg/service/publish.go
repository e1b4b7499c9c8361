package service

import (
	"fmt"

	"github.com/kattn/djgenetics/pkg/api"
	"github.com/kattn/djgenetics/pkg/logger"
	"github.com/kattn/djgenetics/pkg/output"
	"github.com/kattn/djgenetics/pkg/pianoroll"
)

// PublishService uploads rolls as MIDI patterns
type PublishService struct {
	rolls *RollService
}

// NewPublishService creates a new publish service
func NewPublishService() *PublishService {
	return &PublishService{rolls: NewRollService()}
}

// PublishOptions describes the pattern to create
type PublishOptions struct {
	Name                 string
	Description          string
	IsPublic             bool
	MergeVelocityChanges bool
}

// Publish encodes a roll and uploads it as a MIDI pattern
func (ps *PublishService) Publish(src Source, opts PublishOptions) (*api.MIDIPattern, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("pattern name cannot be empty")
	}
	if len(opts.Name) > api.MaxPatternName {
		return nil, fmt.Errorf("pattern name exceeds maximum length (%d characters)", api.MaxPatternName)
	}

	m, fs, err := ps.rolls.Load(src)
	if err != nil {
		return nil, err
	}
	notes, err := pianoroll.EncodeWithOptions(m, fs, pianoroll.EncodeOptions{
		MergeVelocityChanges: opts.MergeVelocityChanges,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Publishing MIDI pattern", "name", opts.Name, "notes", len(notes))
	pattern, err := api.CreateMIDIPattern(api.NewPatternRequest(opts.Name, opts.Description, notes, opts.IsPublic))
	if err != nil {
		logger.Error("Failed to publish MIDI pattern", "error", err)
		return nil, err
	}

	logger.Info("Published MIDI pattern", "id", pattern.ID)
	output.PrintSuccess("✓ Published pattern %s (%d note%s)", pattern.ID, len(notes), pluralize(len(notes)))
	return pattern, nil
}
