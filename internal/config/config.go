package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type Config struct {
	Env            string
	ServerAddr     string
	FrontendOrigin string
	Timezone       *time.Location

	StoreDriver string
	MongoURI    string
	MongoDB     string

	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int
	CacheSize       int

	RateLimitAI        int
	RateLimitWindowSec int

	JWTSecret         string
	AccessTTLMinutes  int
	RefreshTTLMinutes int
	CookieSecure      bool

	AI  AIConfig
	RAG RAGConfig

	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string
	BrevoSandbox     bool

	Storage StorageConfig
}

type AIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

type RAGConfig struct {
	ProjectID      string
	Location       string
	EmbeddingModel string
	ChunkSize      int
	ChunkOverlap   int
}

// Configured reports whether a Google Cloud project is set.
func (c RAGConfig) Configured() bool {
	return strings.TrimSpace(c.ProjectID) != ""
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (c StorageConfig) Configured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func Load() (*Config, error) {
	// A missing .env is fine; variables already in the environment win.
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("TZ", "Europe/Berlin"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/salesagent")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "salesagent"
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreMemory))
	if driver != StoreMongo {
		driver = StoreMemory
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		Timezone:           loc,
		StoreDriver:        driver,
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 300),
		CacheSize:          getEnvInt("CACHE_SIZE", 512),
		RateLimitAI:        getEnvInt("RATE_LIMIT_AI", 30),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:   getEnvInt("ACCESS_TTL_MINUTES", 60),
		RefreshTTLMinutes:  getEnvInt("REFRESH_TTL_MINUTES", 43200),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		AI: AIConfig{
			APIKey:         getEnv("XAI_API_KEY", ""),
			BaseURL:        getEnv("XAI_API_URL", "https://api.x.ai/v1"),
			Model:          getEnv("XAI_MODEL", "grok-2-latest"),
			TimeoutSeconds: getEnvInt("AI_TIMEOUT_SECONDS", 60),
		},
		RAG: RAGConfig{
			ProjectID:      getEnv("GOOGLE_CLOUD_PROJECT_ID", ""),
			Location:       getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			EmbeddingModel: getEnv("VERTEX_RAG_EMBEDDING_MODEL", "text-embedding-005"),
			ChunkSize:      getEnvInt("VERTEX_RAG_CHUNK_SIZE", 1024),
			ChunkOverlap:   getEnvInt("VERTEX_RAG_CHUNK_OVERLAP", 200),
		},
		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail: getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:  getEnv("BREVO_SENDER_NAME", "SalesAgent"),
		BrevoSandbox:     getEnvBool("BREVO_SANDBOX", false),
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_BUCKET", "salesagent-documents"),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:    getEnvBool("STORAGE_USE_SSL", true),
		},
	}

	return cfg, nil
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// only the first path segment names the database
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
