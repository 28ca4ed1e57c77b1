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
	App     AppConfig
	DB      DBConfig
	Log     LogConfig
	Storage StorageConfig
	Cache   CacheConfig
	Events  EventsConfig
	Auth    AuthConfig
	Admin   AdminConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
}

// DBConfig selects the store. Driver is sqlite, postgres or memory.
type DBConfig struct {
	Driver string
	DSN    string
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

type StorageConfig struct {
	Type     string // local, s3
	MediaDir string
	BaseURL  string
	S3       S3Config
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string
}

type CacheConfig struct {
	Type          string // memory, redis
	TTL           time.Duration
	RedisURL      string
	RedisPassword string
	RedisDB       int
}

type EventsConfig struct {
	Type    string // noop, nats
	NATSURL string
	Subject string
}

type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	SessionIdleTTL    time.Duration
	SessionSweepEvery time.Duration
}

// AdminConfig is the super admin seeded on startup. Empty email disables seeding.
type AdminConfig struct {
	Email    string
	Password string
}

func Load() Config {
	// .env is optional; plain environment variables work without it
	_ = godotenv.Load()

	cfg := Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "bizdir"),
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		DB: DBConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:    getEnv("DB_DSN", "bizdir.db"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE", "logs/bizdir.log"),
			MaxSize:    getInt("LOG_MAX_SIZE", 100),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getInt("LOG_MAX_AGE", 30),
			Compress:   getBool("LOG_COMPRESS", true),
		},
		Storage: StorageConfig{
			Type:     getEnv("STORAGE_TYPE", "local"),
			MediaDir: getEnv("MEDIA_DIR", "./web/media"),
			BaseURL:  strings.TrimRight(getEnv("STORAGE_BASE_URL", "/media"), "/"),
			S3: S3Config{
				Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
				SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
				Bucket:    getEnv("S3_BUCKET", "bizdir"),
				UseSSL:    getBool("S3_USE_SSL", false),
				Region:    getEnv("S3_REGION", "auto"),
				PublicURL: getEnv("S3_PUBLIC_URL", ""),
			},
		},
		Cache: CacheConfig{
			Type:          getEnv("CACHE_TYPE", "memory"),
			TTL:           getDuration("CACHE_TTL", 5*time.Minute),
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0),
		},
		Events: EventsConfig{
			Type:    getEnv("EVENTS_TYPE", "noop"),
			NATSURL: getEnv("NATS_URL", "nats://localhost:4222"),
			Subject: getEnv("EVENTS_SUBJECT", "bizdir.moderation"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", "change-me"),
			TokenTTL:          getDuration("TOKEN_TTL", 24*time.Hour),
			SessionIdleTTL:    getDuration("SESSION_IDLE_TTL", 7*24*time.Hour),
			SessionSweepEvery: getDuration("SESSION_SWEEP_EVERY", time.Hour),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@bizdir.test"),
			Password: getEnv("ADMIN_PASSWORD", "Passw0rd!"),
		},
	}

	log.Printf("[config] PORT=%s APP_ENV=%s DB_DRIVER=%s DB_DSN=%s STORAGE=%s CACHE=%s EVENTS=%s LOG_OUTPUT=%s JWT_SECRET=%s",
		cfg.App.Port, cfg.App.Env, cfg.DB.Driver, redactDSN(cfg.DB.DSN), cfg.Storage.Type, cfg.Cache.Type, cfg.Events.Type, cfg.Log.Output, mask(cfg.Auth.JWTSecret))
	return cfg
}

func (c Config) IsProduction() bool { return c.App.Env == "production" }

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// mask keeps the first two characters of a secret.
func mask(s string) string {
	if len(s) <= 2 {
		return "***"
	}
	return s[:2] + "***"
}

// redactDSN hides connection strings that may carry credentials. Plain sqlite paths are shown.
func redactDSN(dsn string) string {
	if strings.Contains(dsn, "://") || strings.Contains(dsn, "password=") {
		return mask(dsn)
	}
	return dsn
}
