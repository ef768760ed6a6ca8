package queue

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shortreel/internal/creator"
	"shortreel/internal/domain"
	"shortreel/internal/render"
	"shortreel/internal/storage"
)

// memVideoRepo is an in-memory VideoRepository.
type memVideoRepo struct {
	mu     sync.Mutex
	videos map[string]domain.Video
}

func newMemVideoRepo() *memVideoRepo {
	return &memVideoRepo{videos: map[string]domain.Video{}}
}

func (m *memVideoRepo) Upsert(_ context.Context, video domain.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[video.ID] = video
	return nil
}

func (m *memVideoRepo) Get(_ context.Context, id string) (*domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	video, ok := m.videos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &video, nil
}

func (m *memVideoRepo) List(context.Context) ([]domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Video, 0, len(m.videos))
	for _, v := range m.videos {
		out = append(out, v)
	}
	return out, nil
}

func (m *memVideoRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.videos, id)
	return nil
}

// assembleFunc adapts a function to the Assembler interface.
type assembleFunc func(ctx context.Context, videoID string, scenes []domain.Scene, config domain.RenderConfig) (*creator.Result, error)

func (f assembleFunc) Assemble(ctx context.Context, videoID string, scenes []domain.Scene, config domain.RenderConfig) (*creator.Result, error) {
	return f(ctx, videoID, scenes, config)
}

// renderFunc adapts a function to the render.Renderer interface.
type renderFunc func(ctx context.Context, in render.Input, progress render.ProgressReporter) error

func (f renderFunc) Render(ctx context.Context, in render.Input, progress render.ProgressReporter) error {
	return f(ctx, in, progress)
}

func okResult() (*creator.Result, error) {
	return &creator.Result{
		Segments:      []domain.Segment{{Audio: domain.SegmentAudio{Duration: 5}}},
		TotalDuration: 5,
	}, nil
}

// completeRender writes the output artifact and reports full progress.
func completeRender(_ context.Context, in render.Input, progress render.ProgressReporter) error {
	progress.Report(1)
	return os.WriteFile(in.OutputPath, []byte("mp4"), 0o644)
}

type queueFixture struct {
	queue  *Queue
	repo   *memVideoRepo
	store  *storage.FileStore
	cancel context.CancelFunc
}

func newQueueFixture(t *testing.T, assemble assembleFunc, renderer renderFunc) *queueFixture {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	repo := newMemVideoRepo()
	policy := creator.DefaultPolicy()
	policy.RenderAttempts = 2
	policy.RenderBackoff = time.Millisecond
	logger := zerolog.Nop()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	q := New(ctx, repo, assemble, renderer, nil, store, policy, logger)
	return &queueFixture{queue: q, repo: repo, store: store, cancel: cancel}
}

func waitForTerminal(t *testing.T, fx *queueFixture, id string) domain.VideoStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, _ := fx.queue.Status(context.Background(), id)
		if status != domain.StatusProcessing {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return ""
}

func scenes() []domain.Scene {
	return []domain.Scene{{Text: "Hello.", SearchTerms: []string{"sky"}}}
}

func TestQueueProcessesJobToReady(t *testing.T) {
	var fx *queueFixture
	fx = newQueueFixture(t,
		func(_ context.Context, id string, _ []domain.Scene, _ domain.RenderConfig) (*creator.Result, error) {
			// Leave scratch files behind; the queue owns cleanup.
			dir, err := fx.store.EnsureDir(creator.TempKey(id))
			if err != nil {
				return nil, err
			}
			if err := os.WriteFile(dir+"/scene00.wav", []byte("wav"), 0o644); err != nil {
				return nil, err
			}
			return okResult()
		},
		completeRender,
	)

	id, err := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "demo")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if status := waitForTerminal(t, fx, id); status != domain.StatusReady {
		t.Fatalf("status = %q, want ready", status)
	}
	status, progress := fx.queue.Status(context.Background(), id)
	if status != domain.StatusReady || progress != 100 {
		t.Fatalf("terminal state = %q/%d, want ready/100", status, progress)
	}
	if !fx.store.Exists(VideoKey(id)) {
		t.Fatalf("output artifact missing at %s", VideoKey(id))
	}
	scratch, _ := fx.store.Path(creator.TempKey(id))
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Fatalf("scratch directory %s survived the job", scratch)
	}
}

func TestQueueSurvivesFailedJob(t *testing.T) {
	var calls int
	var mu sync.Mutex
	fx := newQueueFixture(t,
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				return nil, errors.New("assembly exploded")
			}
			return okResult()
		},
		completeRender,
	)

	first, err := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	second, err := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if status := waitForTerminal(t, fx, first); status != domain.StatusFailed {
		t.Fatalf("first job status = %q, want failed", status)
	}
	if status := waitForTerminal(t, fx, second); status != domain.StatusReady {
		t.Fatalf("second job status = %q, want ready; the worker must outlive failures", status)
	}
}

func TestQueueRecoversFromPanic(t *testing.T) {
	var calls int
	var mu sync.Mutex
	fx := newQueueFixture(t,
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				panic("segment index out of range")
			}
			return okResult()
		},
		completeRender,
	)

	first, _ := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "")
	second, _ := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "")

	if status := waitForTerminal(t, fx, first); status != domain.StatusFailed {
		t.Fatalf("panicked job status = %q, want failed", status)
	}
	if status := waitForTerminal(t, fx, second); status != domain.StatusReady {
		t.Fatalf("follow-up job status = %q, want ready", status)
	}
}

func TestQueueRetriesRender(t *testing.T) {
	var attempts int
	var mu sync.Mutex
	fx := newQueueFixture(t,
		func(_ context.Context, _ string, _ []domain.Scene, _ domain.RenderConfig) (*creator.Result, error) {
			return okResult()
		},
		func(ctx context.Context, in render.Input, progress render.ProgressReporter) error {
			mu.Lock()
			attempts++
			first := attempts == 1
			mu.Unlock()
			if first {
				return errors.New("encoder hiccup")
			}
			return completeRender(ctx, in, progress)
		},
	)

	id, _ := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "")
	if status := waitForTerminal(t, fx, id); status != domain.StatusReady {
		t.Fatalf("status = %q, want ready after retry", status)
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Fatalf("render attempts = %d, want 2", attempts)
	}
}

func TestQueueRenderExhaustionFails(t *testing.T) {
	fx := newQueueFixture(t,
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			return okResult()
		},
		func(context.Context, render.Input, render.ProgressReporter) error {
			return errors.New("encoder down")
		},
	)

	id, _ := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "")
	if status := waitForTerminal(t, fx, id); status != domain.StatusFailed {
		t.Fatalf("status = %q, want failed after retry budget", status)
	}
}

func TestQueueProgressVisibleWhileRendering(t *testing.T) {
	reported := make(chan struct{})
	release := make(chan struct{})
	fx := newQueueFixture(t,
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			return okResult()
		},
		func(ctx context.Context, in render.Input, progress render.ProgressReporter) error {
			progress.Report(0.42)
			close(reported)
			<-release
			return completeRender(ctx, in, progress)
		},
	)

	id, _ := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, "")
	<-reported

	status, progress := fx.queue.Status(context.Background(), id)
	if status != domain.StatusProcessing {
		t.Fatalf("status = %q, want processing mid-render", status)
	}
	if progress != 42 {
		t.Fatalf("progress = %d, want 42", progress)
	}

	close(release)
	if status := waitForTerminal(t, fx, id); status != domain.StatusReady {
		t.Fatalf("status = %q, want ready", status)
	}
}

func TestQueueStatusUnknownIDFails(t *testing.T) {
	fx := newQueueFixture(t,
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			return okResult()
		},
		completeRender,
	)

	status, progress := fx.queue.Status(context.Background(), "no-such-job")
	if status != domain.StatusFailed || progress != 0 {
		t.Fatalf("status = %q/%d, want failed/0", status, progress)
	}
}

func TestQueueStatusSelfHealsFromArtifact(t *testing.T) {
	fx := newQueueFixture(t,
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			return okResult()
		},
		completeRender,
	)

	// An artifact without a record, as after a database wipe.
	if _, err := fx.store.Write(context.Background(), VideoKey("orphan"), []byte("mp4")); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	status, progress := fx.queue.Status(context.Background(), "orphan")
	if status != domain.StatusReady || progress != 100 {
		t.Fatalf("status = %q/%d, want ready/100", status, progress)
	}
	video, err := fx.repo.Get(context.Background(), "orphan")
	if err != nil {
		t.Fatalf("record not restored: %v", err)
	}
	if video.Status != domain.StatusReady {
		t.Fatalf("restored status = %q, want ready", video.Status)
	}
}

func TestQueueLogsOutputPathFailure(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	repo := newMemVideoRepo()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	q := New(context.Background(), repo, assembleFunc(
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			return okResult()
		}),
		renderFunc(completeRender), nil, store, creator.DefaultPolicy(), logger)

	// An id that escapes the storage root cannot be resolved to an output
	// path; the job must fail with the error on record in the log.
	q.process(job{id: "../../escape"})

	video, err := repo.Get(context.Background(), "../../escape")
	if err != nil {
		t.Fatalf("no record persisted: %v", err)
	}
	if video.Status != domain.StatusFailed {
		t.Fatalf("status = %q, want failed", video.Status)
	}
	if !strings.Contains(buf.String(), "resolve output path failed") {
		t.Fatalf("path failure not logged: %s", buf.String())
	}
}

func TestQueueEnqueueAfterShutdown(t *testing.T) {
	fx := newQueueFixture(t,
		func(context.Context, string, []domain.Scene, domain.RenderConfig) (*creator.Result, error) {
			return okResult()
		},
		completeRender,
	)
	fx.cancel()

	if _, err := fx.queue.Enqueue(context.Background(), scenes(), domain.RenderConfig{}, ""); !errors.Is(err, domain.ErrQueueStopped) {
		t.Fatalf("err = %v, want ErrQueueStopped", err)
	}
}
