package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/BuzzLyutic/taskpad/internal/statefile"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. Anyone
// can mint tokens with it, so the server only accepts it in dev mode.
const DevJWTSecret = "dev-secret-change-me"

var ErrInsecureSecret = errors.New("JWT_SECRET is unset or the development default; set it, or TASKPAD_DEV=true for local use")

type Config struct {
	Port        string
	DatabaseURL string // пусто - хранение в памяти
	RedisAddr   string // пусто - без кэша
	CacheTTL    time.Duration
	WorkerCount int

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
	SignInURL string
	DevMode   bool

	ServerURL string
	Token     string

	LicenseKey  string
	LicenseFile string
	SessionFile string
}

// Load reads .env (when present) and then the environment.
func Load() Config {
	_ = godotenv.Load()

	stateDir := statefile.DefaultDir()
	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		CacheTTL:    getEnvDuration("CACHE_TTL", 5*time.Minute),
		WorkerCount: getEnvInt("WORKER_COUNT", 3),

		JWTSecret: getEnv("JWT_SECRET", DevJWTSecret),
		JWTIssuer: getEnv("JWT_ISSUER", "taskpad"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
		SignInURL: getEnv("SIGN_IN_URL", ""),
		DevMode:   getEnvBool("TASKPAD_DEV", false),

		ServerURL: getEnv("TASKPAD_SERVER", "http://localhost:8080"),
		Token:     getEnv("TASKPAD_TOKEN", ""),

		LicenseKey:  getEnv("LICENSE_KEY", ""),
		LicenseFile: getEnv("LICENSE_FILE", filepath.Join(stateDir, "license.yaml")),
		SessionFile: getEnv("SESSION_FILE", filepath.Join(stateDir, "session.yaml")),
	}
}

// ValidateServer rejects settings the API server must not run with.
func (c Config) ValidateServer() error {
	if c.JWTSecret == "" || (c.JWTSecret == DevJWTSecret && !c.DevMode) {
		return ErrInsecureSecret
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
