package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"shortreel/internal/adapter/repo"
	"shortreel/internal/creator"
	"shortreel/internal/http/handlers"
	"shortreel/internal/http/httpapi"
	"shortreel/internal/infra"
	"shortreel/internal/media"
	"shortreel/internal/music"
	"shortreel/internal/providers/kokoro"
	"shortreel/internal/providers/pexels"
	"shortreel/internal/providers/whisper"
	"shortreel/internal/queue"
	"shortreel/internal/render"
	"shortreel/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	musicLib, err := music.Load(cfg.MusicManifest, rng)
	if err != nil {
		logger.Warn().Err(err).Msg("music manifest unavailable, rendering without music")
		musicLib = music.New(nil, rng)
	}

	synth := kokoro.NewClient(kokoro.Options{
		Python: cfg.KokoroPython,
		Script: cfg.KokoroScript,
		Logger: &logger,
	})
	defer synth.Close()

	transcriber := whisper.NewClient(whisper.Options{
		Bin:    cfg.WhisperBin,
		Model:  cfg.WhisperModel,
		Logger: &logger,
	})

	catalog, err := pexels.NewClient(pexels.Options{
		APIKey:     cfg.PexelsAPIKey,
		BaseURL:    cfg.PexelsBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.PexelsTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure pexels client")
	}

	toolkit := media.NewToolkit(cfg.FFmpegBin, cfg.FFprobeBin)

	policy := creator.DefaultPolicy()
	policy.SearchTimeout = cfg.PexelsTimeout

	videoRepo := repo.NewVideoRepository(pool)
	mediaRepo := repo.NewMediaRepository(pool)

	resolver := creator.NewVisualResolver(catalog, rng, policy, logger)
	segmenter := creator.NewSegmenter(toolkit, policy, logger)
	assembler := creator.NewAssembler(synth, transcriber, toolkit, resolver, segmenter, mediaRepo, store, policy, logger)
	renderer := render.NewFFmpegRenderer(cfg.FFmpegBin, logger)

	q := queue.New(ctx, videoRepo, assembler, renderer, musicLib, store, policy, logger)

	app := handlers.NewApp(q, videoRepo, mediaRepo, store, musicLib, toolkit, logger)
	router := httpapi.NewRouter(app, logger, cfg.CORSOrigins)
	server := infra.NewHTTPServer(cfg, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
