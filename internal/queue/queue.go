// Package queue serializes video jobs through a single worker and owns
// every job lifecycle transition.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shortreel/internal/creator"
	"shortreel/internal/domain"
	"shortreel/internal/infra"
	"shortreel/internal/music"
	"shortreel/internal/render"
	"shortreel/internal/storage"
)

// VideoKey is the storage key of a job's output artifact.
func VideoKey(id string) string {
	return "videos/" + id + ".mp4"
}

// Assembler is the scene-assembly stage of a job. Implemented by
// creator.Assembler.
type Assembler interface {
	Assemble(ctx context.Context, videoID string, scenes []domain.Scene, config domain.RenderConfig) (*creator.Result, error)
}

type job struct {
	id     string
	title  string
	scenes []domain.Scene
	config domain.RenderConfig
}

// Queue processes exactly one job at a time. The persisted record is the
// durable source of truth for status; the progress map is a low-latency
// cache that only exists while a job is being rendered.
type Queue struct {
	ctx       context.Context
	repo      domain.VideoRepository
	assembler Assembler
	renderer  render.Renderer
	music     *music.Library
	store     *storage.FileStore
	policy    creator.Policy
	logger    infra.Logger

	mu       sync.Mutex
	pending  []job
	active   bool
	progress map[string]int
}

// New builds a queue. ctx bounds the lifetime of all background work.
func New(
	ctx context.Context,
	repo domain.VideoRepository,
	assembler Assembler,
	renderer render.Renderer,
	musicLib *music.Library,
	store *storage.FileStore,
	policy creator.Policy,
	logger infra.Logger,
) *Queue {
	return &Queue{
		ctx:       ctx,
		repo:      repo,
		assembler: assembler,
		renderer:  renderer,
		music:     musicLib,
		store:     store,
		policy:    policy,
		logger:    logger,
		progress:  map[string]int{},
	}
}

// Enqueue registers a new job, persists its initial record and starts the
// worker if it was idle. The returned id is immediately pollable.
func (q *Queue) Enqueue(ctx context.Context, scenes []domain.Scene, config domain.RenderConfig, title string) (string, error) {
	if err := q.ctx.Err(); err != nil {
		return "", domain.ErrQueueStopped
	}
	id := uuid.NewString()

	if err := q.repo.Upsert(ctx, domain.Video{
		ID:       id,
		Status:   domain.StatusProcessing,
		Progress: 0,
		Title:    title,
	}); err != nil {
		return "", fmt.Errorf("queue: persist initial record: %w", err)
	}

	q.mu.Lock()
	q.pending = append(q.pending, job{id: id, title: title, scenes: scenes, config: config})
	start := !q.active
	if start {
		q.active = true
	}
	q.mu.Unlock()

	if start {
		go q.run()
	}

	q.logger.Info().Str("video_id", id).Int("scenes", len(scenes)).Msg("queue: job enqueued")
	return id, nil
}

// Status resolves a job's state. Resolution order: live queue membership,
// persisted record, output file on disk (self-healing a lost record), and
// finally failed.
func (q *Queue) Status(ctx context.Context, id string) (domain.VideoStatus, int) {
	q.mu.Lock()
	for _, j := range q.pending {
		if j.id == id {
			progress := q.progress[id]
			q.mu.Unlock()
			return domain.StatusProcessing, progress
		}
	}
	q.mu.Unlock()

	if video, err := q.repo.Get(ctx, id); err == nil {
		return video.Status, video.Progress
	}

	if q.store.Exists(VideoKey(id)) {
		// The artifact outlived its record; restore it.
		if err := q.repo.Upsert(ctx, domain.Video{ID: id, Status: domain.StatusReady, Progress: 100}); err != nil {
			q.logger.Warn().Err(err).Str("video_id", id).Msg("queue: self-heal persist failed")
		}
		return domain.StatusReady, 100
	}

	return domain.StatusFailed, 0
}

// run drains the queue. Each job is popped only after processing returns,
// whatever the outcome, so one failure never wedges the worker.
func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 || q.ctx.Err() != nil {
			q.active = false
			q.mu.Unlock()
			return
		}
		j := q.pending[0]
		q.mu.Unlock()

		q.process(j)

		q.mu.Lock()
		q.pending = q.pending[1:]
		delete(q.progress, j.id)
		q.mu.Unlock()
	}
}

// process runs one job end to end: assemble, pick music, render with a
// bounded retry, persist the terminal state. Scratch files are removed
// unconditionally.
func (q *Queue) process(j job) {
	logger := q.logger.With().Str("video_id", j.id).Logger()
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("queue: job panicked")
			q.markFailed(j)
		}
		if err := q.store.RemoveAll(creator.TempKey(j.id)); err != nil {
			logger.Warn().Err(err).Msg("queue: scratch cleanup failed")
		}
	}()

	logger.Info().Msg("queue: job started")

	result, err := q.assembler.Assemble(q.ctx, j.id, j.scenes, j.config)
	if err != nil {
		logger.Error().Err(err).Msg("queue: assembly failed")
		q.markFailed(j)
		return
	}

	musicPath := ""
	if q.music != nil {
		track, err := q.music.ForMood(j.config.Music)
		if err != nil {
			logger.Warn().Err(err).Msg("queue: no music available, rendering without")
		} else if p, err := q.store.Path(track.File); err == nil {
			musicPath = p
		}
	}

	outputPath, err := q.store.Path(VideoKey(j.id))
	if err != nil {
		logger.Error().Err(err).Msg("queue: resolve output path failed")
		q.markFailed(j)
		return
	}
	if _, err := q.store.EnsureDir("videos"); err != nil {
		logger.Error().Err(err).Msg("queue: ensure output dir failed")
		q.markFailed(j)
		return
	}
	workDir, err := q.store.EnsureDir(creator.TempKey(j.id))
	if err != nil {
		logger.Error().Err(err).Msg("queue: ensure scratch dir failed")
		q.markFailed(j)
		return
	}

	input := render.Input{
		VideoID:       j.id,
		Segments:      result.Segments,
		TotalDuration: result.TotalDuration,
		Config:        j.config,
		MusicPath:     musicPath,
		WorkDir:       workDir,
		OutputPath:    outputPath,
	}
	reporter := render.ProgressFunc(func(fraction float64) {
		q.setProgress(j, int(fraction*100))
	})

	for attempt := 1; ; attempt++ {
		err = q.renderer.Render(q.ctx, input, reporter)
		if err == nil {
			break
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("queue: render attempt failed")
		if attempt >= q.policy.RenderAttempts {
			q.markFailed(j)
			return
		}
		time.Sleep(q.policy.RenderBackoff)
	}

	if err := q.repo.Upsert(q.ctx, domain.Video{
		ID:       j.id,
		Status:   domain.StatusReady,
		Progress: 100,
		Title:    j.title,
	}); err != nil {
		logger.Error().Err(err).Msg("queue: persist terminal state failed")
	}
	logger.Info().
		Dur("elapsed", time.Since(started)).
		Float64("duration", result.TotalDuration).
		Int("segments", len(result.Segments)).
		Msg("queue: job ready")
}

// setProgress mirrors render progress into the cache and the durable record.
func (q *Queue) setProgress(j job, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	q.mu.Lock()
	q.progress[j.id] = percent
	q.mu.Unlock()

	if err := q.repo.Upsert(q.ctx, domain.Video{
		ID:       j.id,
		Status:   domain.StatusProcessing,
		Progress: percent,
		Title:    j.title,
	}); err != nil {
		q.logger.Warn().Err(err).Str("video_id", j.id).Msg("queue: persist progress failed")
	}
}

func (q *Queue) markFailed(j job) {
	if err := q.repo.Upsert(q.ctx, domain.Video{
		ID:     j.id,
		Status: domain.StatusFailed,
		Title:  j.title,
	}); err != nil {
		q.logger.Error().Err(err).Str("video_id", j.id).Msg("queue: persist failure failed")
	}
}
