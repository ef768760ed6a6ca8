package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
)

const (
	outputFPS = 25
	// Segment preparation accounts for this share of reported progress;
	// the final mux covers the rest.
	segmentStageWeight = 0.7
	kenBurnsZoomMax    = 1.12
)

// FFmpegRenderer renders with the ffmpeg binary: one intermediate clip per
// segment (background fitted to frame, captions burned, narration muxed),
// then a concat pass that mixes background music underneath.
type FFmpegRenderer struct {
	ffmpegBin string
	logger    infra.Logger
}

// NewFFmpegRenderer builds a renderer around the given ffmpeg binary.
func NewFFmpegRenderer(ffmpegBin string, logger infra.Logger) *FFmpegRenderer {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &FFmpegRenderer{ffmpegBin: ffmpegBin, logger: logger}
}

// Render implements Renderer.
func (r *FFmpegRenderer) Render(ctx context.Context, in Input, progress ProgressReporter) error {
	if len(in.Segments) == 0 {
		return fmt.Errorf("render: no segments")
	}
	width, height := in.Config.Orientation.Dimensions()

	clipPaths := make([]string, 0, len(in.Segments))
	for i, seg := range in.Segments {
		clipPath := filepath.Join(in.WorkDir, fmt.Sprintf("render_%03d.mp4", i))
		if err := r.renderSegment(ctx, seg, in.Config, width, height, clipPath); err != nil {
			return fmt.Errorf("render: segment %d: %w", i, err)
		}
		clipPaths = append(clipPaths, clipPath)
		if progress != nil {
			progress.Report(float64(i+1) / float64(len(in.Segments)) * segmentStageWeight)
		}
	}

	if err := r.concatWithMusic(ctx, in, clipPaths, progress); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if progress != nil {
		progress.Report(1)
	}
	return nil
}

// renderSegment fits the background into the frame, burns the captions and
// muxes the narration. The video track is cut to the segment duration and
// the audio padded with silence, so a trailing pad on the last segment
// simply plays out over the background.
func (r *FFmpegRenderer) renderSegment(ctx context.Context, seg domain.Segment, cfg domain.RenderConfig, width, height int, outPath string) error {
	var filter strings.Builder
	if seg.IsImage {
		// Ken Burns: oversample then slow zoom toward center.
		frames := int(seg.Audio.Duration * outputFPS)
		if frames < 1 {
			frames = 1
		}
		step := (kenBurnsZoomMax - 1.0) / float64(frames)
		fmt.Fprintf(&filter,
			"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,zoompan=z='min(zoom+%.6f,%.3f)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d",
			width*2, height*2, width*2, height*2,
			step, kenBurnsZoomMax, frames, width, height, outputFPS,
		)
	} else {
		fmt.Fprintf(&filter,
			"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,fps=%d",
			width, height, width, height, outputFPS,
		)
	}
	for _, caption := range seg.Captions {
		filter.WriteString(",")
		filter.WriteString(drawtextFilter(caption.Text, float64(caption.StartMs)/1000, float64(caption.EndMs)/1000, height, cfg))
	}

	args := []string{"-y"}
	if seg.IsImage {
		args = append(args, "-loop", "1")
	} else {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", seg.VideoURL,
		"-i", seg.Audio.URL,
		"-t", formatSeconds(seg.Audio.Duration),
		"-vf", filter.String(),
		"-af", "apad",
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		outPath,
	)
	return r.run(ctx, args)
}

// concatWithMusic joins the segment clips and, when a music track is
// configured, loops it underneath at the configured volume.
func (r *FFmpegRenderer) concatWithMusic(ctx context.Context, in Input, clipPaths []string, progress ProgressReporter) error {
	listPath := filepath.Join(in.WorkDir, "render_concat.txt")
	var lines []string
	for _, p := range clipPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listPath}
	if in.MusicPath != "" {
		volume := in.Config.MusicVolume
		if volume <= 0 {
			volume = 0.25
		}
		args = append(args,
			"-stream_loop", "-1",
			"-i", in.MusicPath,
			"-filter_complex",
			fmt.Sprintf("[1:a]volume=%.2f[m];[0:a][m]amix=inputs=2:duration=first:normalize=0[aout]", volume),
			"-map", "0:v",
			"-map", "[aout]",
		)
	}
	args = append(args,
		"-t", formatSeconds(in.TotalDuration),
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		in.OutputPath,
	)
	return r.runWithProgress(ctx, args, in.TotalDuration, progress)
}

func (r *FFmpegRenderer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String()))
	}
	return nil
}

// runWithProgress parses ffmpeg's -progress key=value stream and maps
// out_time into the final span of the reported fraction.
func (r *FFmpegRenderer) runWithProgress(ctx context.Context, args []string, totalSec float64, progress ProgressReporter) error {
	cmd := exec.CommandContext(ctx, r.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg: start: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "out_time_us=") {
			continue
		}
		us, err := strconv.ParseInt(strings.TrimPrefix(line, "out_time_us="), 10, 64)
		if err != nil || totalSec <= 0 || progress == nil {
			continue
		}
		frac := float64(us) / 1e6 / totalSec
		if frac > 1 {
			frac = 1
		}
		progress.Report(segmentStageWeight + frac*(1-segmentStageWeight))
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String()))
	}
	return nil
}

func drawtextFilter(text string, startSec, endSec float64, frameHeight int, cfg domain.RenderConfig) string {
	y := "h-th-" + strconv.Itoa(frameHeight/8)
	switch cfg.CaptionPosition {
	case "top":
		y = strconv.Itoa(frameHeight / 8)
	case "center":
		y = "(h-th)/2"
	}
	box := cfg.CaptionColor
	if box == "" {
		box = "black@0.0"
	}
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=h/18:borderw=3:bordercolor=black:box=1:boxcolor=%s:boxborderw=12:x=(w-tw)/2:y=%s:enable='between(t,%.3f,%.3f)'",
		escapeDrawtext(text), box, y, startSec, endSec,
	)
}

// escapeDrawtext escapes the characters the drawtext filter treats specially.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "%", "\\%")
	return s
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 400
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
