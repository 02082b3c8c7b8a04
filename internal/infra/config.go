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
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	// S3-compatible object storage for generated artwork and uploaded
	// reference images. Buckets are pre-provisioned; the service never
	// creates them.
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	DesignsBucket     string
	ReferencesBucket  string
	PublicMediaURL    string

	// Remote design generation service.
	GenerationBaseURL string
	GenerationAPIKey  string
	GenerationModel   string
	GenerationTimeout time.Duration

	// Bounds for the free-form design text, enforced before any
	// network call is made.
	DesignTextMinLen int
	DesignTextMaxLen int
	PatternTextMax   int

	// Local directory holding base garment mockup images.
	MockupAssetsPath string

	GeoIPDBPath   string
	DefaultLocale string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string

	UploadMaxBytes int64
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3UsePathStyle:    getEnv("S3_USE_PATH_STYLE", "true") == "true",
		DesignsBucket:     getEnv("DESIGNS_BUCKET", "printforge-designs"),
		ReferencesBucket:  getEnv("REFERENCES_BUCKET", "printforge-references"),
		PublicMediaURL:    os.Getenv("PUBLIC_MEDIA_URL"),

		GenerationBaseURL: getEnv("GENERATION_BASE_URL", "https://api.openai.com/v1"),
		GenerationAPIKey:  os.Getenv("GENERATION_API_KEY"),
		GenerationModel:   getEnv("GENERATION_MODEL", "gpt-4o-image"),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 60)),

		DesignTextMinLen: getEnvInt("DESIGN_TEXT_MIN_LEN", 10),
		DesignTextMaxLen: getEnvInt("DESIGN_TEXT_MAX_LEN", 800),
		PatternTextMax:   getEnvInt("PATTERN_TEXT_MAX_LEN", 500),

		MockupAssetsPath: getEnv("MOCKUP_ASSETS_PATH", "./assets/mockups"),

		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.DesignTextMinLen < 1 || cfg.DesignTextMaxLen <= cfg.DesignTextMinLen {
		return nil, fmt.Errorf("invalid design text bounds: min=%d max=%d", cfg.DesignTextMinLen, cfg.DesignTextMaxLen)
	}

	return cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
