// Package media wraps the ffmpeg and ffprobe binaries for the audio
// operations the pipeline needs: probing, normalization, playback encoding
// and sub-range extraction.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Toolkit shells out to ffmpeg/ffprobe. Paths to the binaries come from
// configuration so containers can pin their own builds.
type Toolkit struct {
	ffmpegBin  string
	ffprobeBin string
}

// NewToolkit builds a Toolkit. Empty bin paths fall back to $PATH lookup.
func NewToolkit(ffmpegBin, ffprobeBin string) *Toolkit {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &Toolkit{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}
}

// Duration reports the total duration of a media file in seconds.
func (t *Toolkit) Duration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, t.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %s: parse %q: %w", path, string(out), err)
	}
	return dur, nil
}

// NormalizeForTranscription re-encodes src into a mono 16 kHz WAV, the input
// format the transcription engine expects.
func (t *Toolkit) NormalizeForTranscription(ctx context.Context, src, dst string) error {
	return t.run(ctx,
		"-y",
		"-i", src,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		dst,
	)
}

// EncodePlayback encodes src into a stereo MP3 suitable for composition.
func (t *Toolkit) EncodePlayback(ctx context.Context, src, dst string) error {
	return t.run(ctx,
		"-y",
		"-i", src,
		"-ac", "2",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		dst,
	)
}

// Extract copies the sub-range [start, start+duration) of src into dst,
// keeping the source codec.
func (t *Toolkit) Extract(ctx context.Context, src, dst string, start, duration float64) error {
	return t.run(ctx,
		"-y",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", src,
		"-c", "copy",
		dst,
	)
}

func (t *Toolkit) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, t.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", strings.Join(args, " "), err, tail(stderr.String()))
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// tail keeps error messages readable; ffmpeg banners run long.
func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 400
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
