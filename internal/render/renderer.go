// Package render composes assembled segments into the final MP4.
package render

import (
	"context"

	"shortreel/internal/domain"
)

// ProgressReporter receives fractional render progress in [0, 1].
type ProgressReporter interface {
	Report(fraction float64)
}

// ProgressFunc adapts a function to the ProgressReporter interface.
type ProgressFunc func(float64)

// Report implements ProgressReporter.
func (f ProgressFunc) Report(fraction float64) { f(fraction) }

// Input is everything one render needs.
type Input struct {
	VideoID       string
	Segments      []domain.Segment
	TotalDuration float64 // seconds
	Config        domain.RenderConfig
	MusicPath     string // empty disables background music
	WorkDir       string // scratch directory, owned by the job
	OutputPath    string // final MP4 destination
}

// Renderer burns segments, captions and music into the output artifact.
type Renderer interface {
	Render(ctx context.Context, in Input, progress ProgressReporter) error
}
