package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	RawDir    string
	OutputDir string

	State           string
	TransformCutoff string
	ResultBatchSize int

	FetchBaseURL      string
	FetchRateLimitRPS int
	FetchTimeoutMs    int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "elections.db")),
		RawDir:    getEnv("RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		State:           getEnv("STATE", "MD"),
		TransformCutoff: getEnv("TRANSFORM_CUTOFF", "2002-01-01"),
		ResultBatchSize: getEnvInt("RESULT_BATCH_SIZE", 1000),

		FetchBaseURL:      getEnv("FETCH_BASE_URL", "http://www.elections.state.md.us/elections/results"),
		FetchRateLimitRPS: getEnvInt("FETCH_RATE_LIMIT_RPS", 2),
		FetchTimeoutMs:    getEnvInt("FETCH_TIMEOUT_MS", 30000),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
