package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv, AppPort, BaseURL string
	CORSOrigins              []string

	RedisAddr string
	RedisDB   int

	GeminiKey   string
	GeminiModel string // empty = pick from the live catalog
	GeminiRPS   int
	GeminiBurst int

	DriveFolderID      string
	ServiceAccountFile string

	QuizBatchSize    int
	QuizHistoryLimit int

	FilePollInterval time.Duration
	FilePollMax      int
	HandleCacheTTL   time.Duration
	SessionTTL       time.Duration

	MaxBodyLimit       int
	AllowedMaxFileSize int
	AllowedFileExt     []string
}

func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppEnv:             get("APP_ENV", "dev"),
		AppPort:            get("APP_PORT", "8080"),
		BaseURL:            get("APP_BASE_URL", "http://localhost:8080"),
		CORSOrigins:        split(get("CORS_ORIGINS", "http://localhost:5173")),
		RedisAddr:          get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisDB:            atoi(get("REDIS_DB", "0")),
		GeminiKey:          must("GEMINI_API_KEY"),
		GeminiModel:        get("GEMINI_MODEL", ""),
		GeminiRPS:          atoi(get("GEMINI_RPS", "2")),
		GeminiBurst:        atoi(get("GEMINI_BURST", "2")),
		DriveFolderID:      must("DRIVE_FOLDER_ID"),
		ServiceAccountFile: must("GOOGLE_SERVICE_ACCOUNT_FILE"),
		QuizBatchSize:      atoi(get("QUIZ_BATCH_SIZE", "3")),
		QuizHistoryLimit:   atoi(get("QUIZ_HISTORY_LIMIT", "30")),
		FilePollInterval:   mustDuration(get("FILE_POLL_INTERVAL", "2s")),
		FilePollMax:        atoi(get("FILE_POLL_MAX", "30")),
		HandleCacheTTL:     mustDuration(get("HANDLE_CACHE_TTL", "47h")),
		SessionTTL:         mustDuration(get("SESSION_TTL", "2h")),
		MaxBodyLimit:       GetEnvInt("MAX_BODY_LIMIT_MB", 25),
		AllowedMaxFileSize: GetEnvInt("ALLOWED_MAX_FILE_SIZE", 20),
		AllowedFileExt:     GetEnvList("ALLOWED_FILE_EXT", []string{".pdf"}),
	}
	return c
}

func GetEnvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return d
}

func GetEnvList(k string, d []string) []string {
	if v := os.Getenv(k); v != "" {
		return strings.Split(v, ",")
	}
	return d
}

func get(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}
func atoi(s string) int                   { i, _ := strconv.Atoi(s); return i }
func mustDuration(s string) time.Duration { d, _ := time.ParseDuration(s); return d }
func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func GetEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
