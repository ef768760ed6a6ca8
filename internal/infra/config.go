package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	StoragePath      string
	PexelsAPIKey     string
	PexelsBaseURL    string
	PexelsTimeout    time.Duration
	WhisperBin       string
	WhisperModel     string
	KokoroPython     string
	KokoroScript     string
	FFmpegBin        string
	FFprobeBin       string
	MusicManifest    string
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "3123"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		PexelsAPIKey:     os.Getenv("PEXELS_API_KEY"),
		PexelsBaseURL:    getEnv("PEXELS_BASE_URL", "https://api.pexels.com"),
		PexelsTimeout:    time.Second * time.Duration(getEnvInt("PEXELS_TIMEOUT_SECONDS", 10)),
		WhisperBin:       getEnv("WHISPER_BIN", "whisper-cli"),
		WhisperModel:     getEnv("WHISPER_MODEL", "./models/ggml-base.en.bin"),
		KokoroPython:     getEnv("KOKORO_PYTHON", "python3"),
		KokoroScript:     getEnv("KOKORO_SCRIPT", "./scripts/kokoro_server.py"),
		FFmpegBin:        getEnv("FFMPEG_BIN", "ffmpeg"),
		FFprobeBin:       getEnv("FFPROBE_BIN", "ffprobe"),
		MusicManifest:    getEnv("MUSIC_MANIFEST", "./static/music/manifest.yaml"),
		CORSOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.PexelsAPIKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
