// Package whisper runs the whisper.cpp CLI and parses its full-JSON output
// into transcript records with token-level timestamps.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tidwall/gjson"

	"shortreel/internal/domain"
	"shortreel/internal/infra"
)

// Options controls how the whisper client is configured.
type Options struct {
	Bin    string // whisper.cpp binary, default "whisper-cli"
	Model  string // path to a ggml model file
	Logger *infra.Logger
}

// Client shells out to whisper.cpp per transcription request.
type Client struct {
	bin    string
	model  string
	logger *infra.Logger
}

// NewClient builds a whisper client.
func NewClient(opts Options) *Client {
	bin := opts.Bin
	if bin == "" {
		bin = "whisper-cli"
	}
	return &Client{bin: bin, model: opts.Model, logger: opts.Logger}
}

// Transcribe runs whisper.cpp over a mono 16 kHz WAV file and returns the
// ordered transcript records. language may be empty for auto-detection.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) ([]domain.TranscriptRecord, error) {
	outBase := strings.TrimSuffix(audioPath, ".wav")
	args := []string{
		"-m", c.model,
		"-f", audioPath,
		"-ojf",
		"-of", outBase,
		"--no-prints",
	}
	if language != "" {
		args = append(args, "-l", language)
	}

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper: run %s: %w: %s", audioPath, err, strings.TrimSpace(stderr.String()))
	}

	jsonPath := outBase + ".json"
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: read output: %w", err)
	}
	defer os.Remove(jsonPath)

	records, err := ParseTranscript(data)
	if err != nil {
		return nil, fmt.Errorf("whisper: %s: %w", jsonPath, err)
	}
	if c.logger != nil {
		c.logger.Debug().Str("audio", audioPath).Int("records", len(records)).Msg("whisper: transcription done")
	}
	return records, nil
}

// ParseTranscript decodes whisper.cpp's full-JSON format. gjson keeps the
// parser tolerant to the extra fields whisper.cpp versions move around.
func ParseTranscript(data []byte) ([]domain.TranscriptRecord, error) {
	transcription := gjson.GetBytes(data, "transcription")
	if !transcription.Exists() {
		return nil, fmt.Errorf("no transcription array in output")
	}

	var records []domain.TranscriptRecord
	transcription.ForEach(func(_, seg gjson.Result) bool {
		record := domain.TranscriptRecord{
			Text:   seg.Get("text").String(),
			FromMs: seg.Get("offsets.from").Int(),
			ToMs:   seg.Get("offsets.to").Int(),
		}
		seg.Get("tokens").ForEach(func(_, tok gjson.Result) bool {
			record.Tokens = append(record.Tokens, domain.TranscriptToken{
				Text:   tok.Get("text").String(),
				FromMs: tok.Get("offsets.from").Int(),
				ToMs:   tok.Get("offsets.to").Int(),
			})
			return true
		})
		records = append(records, record)
		return true
	})
	return records, nil
}
