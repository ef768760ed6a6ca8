package creator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
	"shortreel/internal/storage"
	"shortreel/internal/voices"
)

// Result is the output of one assembly run: every renderable segment in
// order plus the total narration duration in seconds (including the
// trailing pad, when configured).
type Result struct {
	Segments      []domain.Segment
	TotalDuration float64
}

// Assembler turns a validated scene list into an ordered segment list. One
// Assembler serves many jobs; all per-job state lives on the stack of
// Assemble.
type Assembler struct {
	synth     Synthesizer
	transcr   Transcriber
	audio     AudioToolkit
	visuals   *VisualResolver
	segmenter *Segmenter
	media     domain.MediaRepository
	store     *storage.FileStore
	policy    Policy
	logger    infra.Logger
}

// NewAssembler wires the assembly pipeline.
func NewAssembler(
	synth Synthesizer,
	transcr Transcriber,
	audio AudioToolkit,
	visuals *VisualResolver,
	segmenter *Segmenter,
	media domain.MediaRepository,
	store *storage.FileStore,
	policy Policy,
	logger infra.Logger,
) *Assembler {
	return &Assembler{
		synth:     synth,
		transcr:   transcr,
		audio:     audio,
		visuals:   visuals,
		segmenter: segmenter,
		media:     media,
		store:     store,
		policy:    policy,
		logger:    logger,
	}
}

// TempKey returns the scratch directory key for a job. Everything under it
// is removed when the job terminates, success or failure.
func TempKey(videoID string) string {
	return "temp/" + videoID
}

// Assemble processes every scene in order and accumulates the segment list.
// Any scene-level failure fails the whole job; no partial result is
// returned. The caller owns scratch cleanup via TempKey.
func (a *Assembler) Assemble(ctx context.Context, videoID string, scenes []domain.Scene, cfg domain.RenderConfig) (*Result, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("%w: no scenes", domain.ErrInvalidScene)
	}
	for i, scene := range scenes {
		if err := scene.Validate(); err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
	}

	voice, err := voices.Resolve(cfg.Voice, cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScene, err)
	}
	orientation := cfg.Orientation
	if orientation == "" {
		orientation = domain.OrientationPortrait
	}

	tempDir, err := a.store.EnsureDir(TempKey(videoID))
	if err != nil {
		return nil, err
	}

	paddingMs := cfg.PaddingBackMs
	if paddingMs == 0 {
		paddingMs = a.policy.PaddingBackMs
	}

	result := &Result{}
	// Clip ids used so far in this job; a background never repeats within
	// one video.
	excluded := map[int64]bool{}

	for i, scene := range scenes {
		lastScene := i == len(scenes)-1
		baseName := fmt.Sprintf("scene%02d", i)

		audioPath, duration, err := a.narrationAudio(ctx, scene, voice, tempDir, baseName)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}

		normWav := filepath.Join(tempDir, baseName+"_16k.wav")
		if err := a.audio.NormalizeForTranscription(ctx, audioPath, normWav); err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}

		records, err := a.transcr.Transcribe(ctx, normWav, cfg.Language)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		captions := AlignCaptions(records, duration)

		subsegments, err := a.subsegments(ctx, normWav, audioPath, captions, duration, tempDir, baseName)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}

		for j, sub := range subsegments {
			segDuration := sub.Duration
			if lastScene && j == len(subsegments)-1 && paddingMs > 0 {
				segDuration += float64(paddingMs) / 1000
			}

			segment := domain.Segment{
				Captions: sub.Captions,
				Audio:    domain.SegmentAudio{URL: sub.AudioPath, Duration: segDuration},
			}

			switch scene.Visual() {
			case domain.VisualStaticImage:
				imagePath, err := a.uploadedPath(ctx, scene.ImageID)
				if err != nil {
					return nil, fmt.Errorf("scene %d: image: %w", i, err)
				}
				segment.VideoURL = imagePath
				segment.IsImage = true
			case domain.VisualSearched:
				clip, err := a.visuals.Resolve(ctx, scene.SearchTerms, segDuration, excluded, orientation)
				if err != nil {
					return nil, fmt.Errorf("scene %d: %w", i, err)
				}
				excluded[clip.ID] = true
				segment.VideoURL = clip.URL
			}

			result.Segments = append(result.Segments, segment)
			result.TotalDuration += segDuration
		}

		a.logger.Debug().
			Str("video_id", videoID).
			Int("scene", i).
			Int("segments", len(subsegments)).
			Float64("duration", duration).
			Msg("assembler: scene done")
	}

	return result, nil
}

// narrationAudio produces the scene's narration track: synthesized from
// text, or loaded from an uploaded file.
func (a *Assembler) narrationAudio(ctx context.Context, scene domain.Scene, voice voices.Voice, tempDir, baseName string) (string, float64, error) {
	switch scene.Narration() {
	case domain.NarrationUploaded:
		path, err := a.uploadedPath(ctx, scene.AudioID)
		if err != nil {
			return "", 0, err
		}
		duration, err := a.audio.Duration(ctx, path)
		if err != nil {
			return "", 0, err
		}
		return path, duration, nil
	default:
		path := filepath.Join(tempDir, baseName+".wav")
		duration, err := a.synth.Synthesize(ctx, scene.Text, voice.Name, voice.LangCode, path)
		if err != nil {
			return "", 0, err
		}
		return path, duration, nil
	}
}

// uploadedPath resolves an upload id to its file on disk.
func (a *Assembler) uploadedPath(ctx context.Context, id string) (string, error) {
	meta, err := a.media.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", domain.ErrUploadMissing, id)
		}
		return "", err
	}
	path, err := a.store.Path(meta.Filename)
	if err != nil {
		return "", err
	}
	if !a.store.Exists(meta.Filename) {
		return "", fmt.Errorf("%w: %s", domain.ErrUploadMissing, id)
	}
	return path, nil
}

// subsegments splits long narration; short narration passes through as a
// single playback-encoded segment.
func (a *Assembler) subsegments(ctx context.Context, normWav, rawAudio string, captions []domain.Caption, duration float64, tempDir, baseName string) ([]Subsegment, error) {
	if duration > a.policy.MaxSegmentSeconds {
		return a.segmenter.Split(ctx, normWav, captions, duration, tempDir, baseName)
	}
	mp3Path := filepath.Join(tempDir, baseName+".mp3")
	if err := a.audio.EncodePlayback(ctx, rawAudio, mp3Path); err != nil {
		return nil, err
	}
	return []Subsegment{{AudioPath: mp3Path, Duration: duration, Captions: captions}}, nil
}
