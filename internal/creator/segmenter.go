package creator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
)

// Subsegment is one bounded slice of a long narration track, ready for
// composition: a playback audio file, its duration and segment-relative
// captions.
type Subsegment struct {
	AudioPath string
	Duration  float64
	Captions  []domain.Caption
}

// Segmenter splits narration tracks that exceed the maximum segment
// duration into bounded sub-segments at natural pause boundaries.
type Segmenter struct {
	audio  AudioToolkit
	policy Policy
	logger infra.Logger
}

// NewSegmenter builds a Segmenter.
func NewSegmenter(audio AudioToolkit, policy Policy, logger infra.Logger) *Segmenter {
	return &Segmenter{audio: audio, policy: policy, logger: logger}
}

// PlanCuts computes the cut points over [0, totalSec] from the full-track
// captions. The returned slice always starts at 0, ends at totalSec, is
// strictly increasing, and no interval exceeds MaxSegmentSeconds. When the
// maximum and the minimum cut spacing conflict, the maximum wins: a forced
// cut may produce a segment shorter than the preferred spacing.
func PlanCuts(captions []domain.Caption, totalSec float64, pol Policy) []float64 {
	cuts := []float64{0}
	var rejected []float64

	last := 0.0
	for i := 0; i+1 < len(captions); i++ {
		gap := captions[i+1].StartMs - captions[i].EndMs
		if gap < pol.MinPauseMs {
			continue
		}
		candidate := float64(captions[i].EndMs+pol.CutBufferMs) / 1000
		if candidate >= totalSec {
			continue
		}
		natural := endsSentence(captions[i].Text) || gap >= 2*pol.MinPauseMs
		if natural && candidate-last >= pol.MinCutSpacing {
			cuts = append(cuts, candidate)
			last = candidate
			continue
		}
		rejected = append(rejected, candidate)
	}

	// Terminal cut: a tail shorter than the slack merges into the last cut
	// instead of producing a sliver segment.
	if len(cuts) == 1 || totalSec-cuts[len(cuts)-1] > pol.TerminalSlack {
		cuts = append(cuts, totalSec)
	} else {
		cuts[len(cuts)-1] = totalSec
	}

	return enforceMaxDuration(cuts, rejected, pol)
}

// enforceMaxDuration re-walks the accepted cuts and inserts forced cuts
// wherever an interval would exceed the maximum. Preference goes to the
// latest rejected candidate inside (lastCut+ForcedCutMin, lastCut+Max];
// failing that the cut lands exactly at lastCut+Max.
func enforceMaxDuration(cuts, rejected []float64, pol Policy) []float64 {
	out := []float64{cuts[0]}
	i := 1
	for i < len(cuts) {
		next := cuts[i]
		lastCut := out[len(out)-1]
		if next-lastCut <= pol.MaxSegmentSeconds {
			out = append(out, next)
			i++
			continue
		}
		forced := 0.0
		for _, r := range rejected {
			if r > lastCut+pol.ForcedCutMin && r <= lastCut+pol.MaxSegmentSeconds && r < next && r > forced {
				forced = r
			}
		}
		if forced == 0 {
			forced = lastCut + pol.MaxSegmentSeconds
		}
		out = append(out, forced)
		// Re-check the same accepted cut against the new lastCut.
	}
	return out
}

func endsSentence(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// Split slices the normalized narration track at the planned cut points.
// Each interval yields a mono 16 kHz WAV slice (cut from sourceWav) and a
// stereo MP3 for playback, with captions re-based to the interval.
func (s *Segmenter) Split(ctx context.Context, sourceWav string, captions []domain.Caption, totalSec float64, dir, baseName string) ([]Subsegment, error) {
	cuts := PlanCuts(captions, totalSec, s.policy)
	s.logger.Debug().
		Str("source", sourceWav).
		Floats64("cuts", cuts).
		Msg("segmenter: planned cuts")

	segments := make([]Subsegment, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		start, end := cuts[i], cuts[i+1]
		duration := end - start

		wavPath := filepath.Join(dir, fmt.Sprintf("%s_seg%02d.wav", baseName, i))
		if err := s.audio.Extract(ctx, sourceWav, wavPath, start, duration); err != nil {
			return nil, fmt.Errorf("segmenter: slice %d: %w", i, err)
		}

		mp3Path := filepath.Join(dir, fmt.Sprintf("%s_seg%02d.mp3", baseName, i))
		if err := s.audio.EncodePlayback(ctx, wavPath, mp3Path); err != nil {
			return nil, fmt.Errorf("segmenter: encode slice %d: %w", i, err)
		}

		segments = append(segments, Subsegment{
			AudioPath: mp3Path,
			Duration:  duration,
			Captions:  RebaseCaptions(captions, start, end),
		})
	}
	return segments, nil
}
