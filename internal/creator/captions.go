package creator

import (
	"strings"

	"shortreel/internal/domain"
)

// specialTokenPrefix marks transcription-engine control tokens such as
// "[_BEG_]" and "[_TT_...]"; they carry no caption text.
const specialTokenPrefix = "[_"

// AlignCaptions merges token-level transcript records into caption units.
// A token without a leading space continues the previous word (the engine's
// tokenizer splits mid-word), so it is folded into the preceding caption
// unless that caption already ends in a space. Timestamps are clamped so the
// final caption never outlives the audio.
func AlignCaptions(records []domain.TranscriptRecord, audioDurationSec float64) []domain.Caption {
	durationMs := int64(audioDurationSec * 1000)

	var captions []domain.Caption
	for _, record := range records {
		for _, token := range record.Tokens {
			if strings.HasPrefix(token.Text, specialTokenPrefix) {
				continue
			}
			if token.Text == "" {
				continue
			}

			if len(captions) > 0 &&
				!strings.HasPrefix(token.Text, " ") &&
				!strings.HasSuffix(captions[len(captions)-1].Text, " ") {
				prev := &captions[len(captions)-1]
				prev.Text += token.Text
				if token.ToMs > prev.EndMs {
					prev.EndMs = token.ToMs
				}
				continue
			}

			captions = append(captions, domain.Caption{
				Text:    token.Text,
				StartMs: token.FromMs,
				EndMs:   token.ToMs,
			})
		}
	}

	for i := range captions {
		captions[i].Text = strings.TrimSpace(captions[i].Text)
		if durationMs > 0 && captions[i].EndMs > durationMs {
			captions[i].EndMs = durationMs
		}
		if captions[i].StartMs > captions[i].EndMs {
			captions[i].StartMs = captions[i].EndMs
		}
	}
	return captions
}

// RebaseCaptions filters captions to those overlapping the window
// [startSec, endSec) of the full track and shifts them to be relative to
// startSec, clamping into the segment's bounds.
func RebaseCaptions(captions []domain.Caption, startSec, endSec float64) []domain.Caption {
	startMs := int64(startSec * 1000)
	endMs := int64(endSec * 1000)
	lengthMs := endMs - startMs

	var out []domain.Caption
	for _, c := range captions {
		if c.StartMs >= endMs || c.EndMs <= startMs {
			continue
		}
		rebased := domain.Caption{
			Text:    c.Text,
			StartMs: clampMs(c.StartMs-startMs, lengthMs),
			EndMs:   clampMs(c.EndMs-startMs, lengthMs),
		}
		out = append(out, rebased)
	}
	return out
}

func clampMs(v, max int64) int64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
