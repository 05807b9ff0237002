package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Advice   AdviceConfig
	AI       AIConfig
	TTS      TTSConfig
	Notifier NotifierConfig
	Media    MediaConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdviceConfig tunes caching of resolved advice.
type AdviceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AIConfig configures the vision schedule-extraction gateway.
type AIConfig struct {
	Enabled          bool
	BaseURL          string
	Model            string
	APIKey           string
	Timeout          time.Duration
	MaxImageBytes    int64
	AllowedMIMETypes []string
}

// TTSConfig configures the audio narration gateway.
type TTSConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Voice    string
	Language string
	Timeout  time.Duration
}

// NotifierConfig governs the periodic backpack reminder sweep.
type NotifierConfig struct {
	Enabled    bool
	Interval   time.Duration
	WebhookURL string
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// MediaConfig controls storage of generated audio files.
type MediaConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// ExportsConfig toggles printable schedule exports.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Advice = AdviceConfig{
		CacheEnabled: v.GetBool("ADVICE_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("ADVICE_CACHE_TTL"), 15*time.Minute),
	}

	maxImageBytes := v.GetInt64("AI_MAX_IMAGE_BYTES")
	if maxImageBytes <= 0 {
		maxImageBytes = 8 * 1024 * 1024
	}
	cfg.AI = AIConfig{
		Enabled:          v.GetBool("ENABLE_AI_IMPORT"),
		BaseURL:          v.GetString("AI_BASE_URL"),
		Model:            v.GetString("AI_MODEL"),
		APIKey:           v.GetString("AI_API_KEY"),
		Timeout:          parseDuration(v.GetString("AI_TIMEOUT"), 45*time.Second),
		MaxImageBytes:    maxImageBytes,
		AllowedMIMETypes: splitAndTrim(v.GetString("AI_ALLOWED_MIME_TYPES")),
	}

	cfg.TTS = TTSConfig{
		Enabled:  v.GetBool("ENABLE_NARRATION"),
		Endpoint: v.GetString("TTS_ENDPOINT"),
		APIKey:   v.GetString("TTS_API_KEY"),
		Voice:    v.GetString("TTS_VOICE"),
		Language: v.GetString("TTS_LANGUAGE"),
		Timeout:  parseDuration(v.GetString("TTS_TIMEOUT"), 30*time.Second),
	}

	cfg.Notifier = NotifierConfig{
		Enabled:    v.GetBool("ENABLE_NOTIFIER"),
		Interval:   parseDuration(v.GetString("NOTIFIER_INTERVAL"), 12*time.Hour),
		WebhookURL: v.GetString("NOTIFIER_WEBHOOK_URL"),
		Workers:    v.GetInt("NOTIFIER_WORKERS"),
		MaxRetries: v.GetInt("NOTIFIER_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFIER_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Media = MediaConfig{
		StorageDir:      v.GetString("MEDIA_STORAGE_DIR"),
		SignedURLSecret: v.GetString("MEDIA_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("MEDIA_SIGNED_URL_TTL"), time.Hour),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "backpack")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADVICE_CACHE_ENABLED", true)
	v.SetDefault("ADVICE_CACHE_TTL", "15m")

	v.SetDefault("ENABLE_AI_IMPORT", false)
	v.SetDefault("AI_BASE_URL", "")
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_TIMEOUT", "45s")
	v.SetDefault("AI_MAX_IMAGE_BYTES", 8*1024*1024)
	v.SetDefault("AI_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp")

	v.SetDefault("ENABLE_NARRATION", false)
	v.SetDefault("TTS_ENDPOINT", "")
	v.SetDefault("TTS_API_KEY", "")
	v.SetDefault("TTS_VOICE", "es-US-Standard-A")
	v.SetDefault("TTS_LANGUAGE", "es-US")
	v.SetDefault("TTS_TIMEOUT", "30s")

	v.SetDefault("ENABLE_NOTIFIER", false)
	v.SetDefault("NOTIFIER_INTERVAL", "12h")
	v.SetDefault("NOTIFIER_WEBHOOK_URL", "")
	v.SetDefault("NOTIFIER_WORKERS", 1)
	v.SetDefault("NOTIFIER_MAX_RETRIES", 3)
	v.SetDefault("NOTIFIER_RETRY_DELAY", "30s")

	v.SetDefault("MEDIA_STORAGE_DIR", "./media")
	v.SetDefault("MEDIA_SIGNED_URL_SECRET", "dev_media_secret")
	v.SetDefault("MEDIA_SIGNED_URL_TTL", "1h")

	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
