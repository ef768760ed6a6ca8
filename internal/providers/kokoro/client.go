// Package kokoro speaks to a long-lived Kokoro TTS python process over
// line-delimited JSON on stdin/stdout. Keeping the process alive avoids
// reloading the model for every synthesized scene.
package kokoro

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"shortreel/internal/infra"
)

// Options controls how the Kokoro client is configured.
type Options struct {
	Python string // python interpreter, default "python3"
	Script string // path to the kokoro server script
	Logger *infra.Logger
}

// Client owns the Kokoro subprocess. Requests are serialized with a mutex:
// the protocol is one response line per request line.
type Client struct {
	python string
	script string
	logger *infra.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
}

type request struct {
	Action     string `json:"action"`
	Text       string `json:"text,omitempty"`
	Voice      string `json:"voice,omitempty"`
	LangCode   string `json:"lang_code,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

type response struct {
	Success    bool    `json:"success"`
	Error      string  `json:"error"`
	OutputPath string  `json:"output_path"`
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
}

// NewClient builds a client; the subprocess starts lazily on first use.
func NewClient(opts Options) *Client {
	python := opts.Python
	if python == "" {
		python = "python3"
	}
	return &Client{python: python, script: opts.Script, logger: opts.Logger}
}

// Synthesize renders text to a WAV file at outputPath and returns its
// duration in seconds.
func (c *Client) Synthesize(ctx context.Context, text, voice, langCode, outputPath string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.ensureStarted(); err != nil {
		return 0, err
	}

	resp, err := c.roundTrip(request{
		Action:     "generate",
		Text:       text,
		Voice:      voice,
		LangCode:   langCode,
		OutputPath: outputPath,
	})
	if err != nil {
		c.stopLocked()
		return 0, fmt.Errorf("kokoro: %w", err)
	}
	if !resp.Success {
		return 0, fmt.Errorf("kokoro: generate failed: %s", resp.Error)
	}
	return resp.Duration, nil
}

// Ping verifies the subprocess is alive, starting it if needed.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureStarted(); err != nil {
		return err
	}
	resp, err := c.roundTrip(request{Action: "ping"})
	if err != nil {
		c.stopLocked()
		return fmt.Errorf("kokoro: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("kokoro: ping failed: %s", resp.Error)
	}
	return nil
}

// Close asks the subprocess to exit and reaps it.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return nil
	}
	_ = json.NewEncoder(c.stdin).Encode(request{Action: "exit"})
	c.stopLocked()
	return nil
}

func (c *Client) ensureStarted() error {
	if c.cmd != nil {
		return nil
	}
	cmd := exec.Command(c.python, c.script)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("kokoro: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("kokoro: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("kokoro: start %s %s: %w", c.python, c.script, err)
	}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	c.cmd = cmd
	c.stdin = stdin
	c.stdout = scanner
	if c.logger != nil {
		c.logger.Info().Str("script", c.script).Msg("kokoro: subprocess started")
	}
	return nil
}

func (c *Client) roundTrip(req request) (response, error) {
	if err := json.NewEncoder(c.stdin).Encode(req); err != nil {
		return response{}, fmt.Errorf("write request: %w", err)
	}
	if !c.stdout.Scan() {
		if err := c.stdout.Err(); err != nil {
			return response{}, fmt.Errorf("read response: %w", err)
		}
		return response{}, fmt.Errorf("subprocess closed its output")
	}
	var resp response
	if err := json.Unmarshal(c.stdout.Bytes(), &resp); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func (c *Client) stopLocked() {
	if c.cmd == nil {
		return
	}
	_ = c.stdin.Close()
	_ = c.cmd.Process.Kill()
	_ = c.cmd.Wait()
	c.cmd = nil
	c.stdin = nil
	c.stdout = nil
}
