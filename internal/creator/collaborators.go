package creator

import (
	"context"

	"shortreel/internal/domain"
)

// Synthesizer turns narration text into a WAV file and reports its duration
// in seconds. Implemented by providers/kokoro.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, langCode, outputPath string) (float64, error)
}

// Transcriber produces token-level transcript records for an audio file.
// Implemented by providers/whisper.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]domain.TranscriptRecord, error)
}

// AudioToolkit covers the audio slicing operations the pipeline needs.
// Implemented by media.Toolkit.
type AudioToolkit interface {
	Duration(ctx context.Context, path string) (float64, error)
	NormalizeForTranscription(ctx context.Context, src, dst string) error
	EncodePlayback(ctx context.Context, src, dst string) error
	Extract(ctx context.Context, src, dst string, start, duration float64) error
}

// Catalog searches the stock footage provider. Implemented by pexels.Client.
type Catalog interface {
	SearchVideos(ctx context.Context, query string, orientation domain.Orientation, perPage int) ([]domain.ClipCandidate, error)
}
