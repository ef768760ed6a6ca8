package creator

import "time"

// Policy holds the tunable constants of the assembly pipeline. The defaults
// below are the production values; tests override them freely.
type Policy struct {
	// Segmentation.
	MaxSegmentSeconds  float64 // hard cap on one segment's duration
	MinPauseMs         int64   // gaps shorter than this are not natural breaks
	MinCutSpacing      float64 // seconds between two accepted cut points
	CutBufferMs        int64   // added after a caption end to place the cut
	ForcedCutMin       float64 // forced cuts must land past lastCut + this
	TerminalSlack      float64 // tail shorter than this merges into the last cut
	PaddingBackMs      int64   // default trailing pad of the final segment
	// Visual search.
	DurationBuffer  float64       // extra clip seconds required over narration
	SearchRetries   int           // retry budget for timeout-class failures
	SearchPageSize  int
	SearchTimeout   time.Duration
	// Render.
	RenderAttempts int
	RenderBackoff  time.Duration
}

// DefaultPolicy returns the production policy values.
func DefaultPolicy() Policy {
	return Policy{
		MaxSegmentSeconds: 15,
		MinPauseMs:        500,
		MinCutSpacing:     3,
		CutBufferMs:       100,
		ForcedCutMin:      5,
		TerminalSlack:     1,
		PaddingBackMs:     0,
		DurationBuffer:    3,
		SearchRetries:     3,
		SearchPageSize:    25,
		SearchTimeout:     10 * time.Second,
		RenderAttempts:    3,
		RenderBackoff:     2 * time.Second,
	}
}
