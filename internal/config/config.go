package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"docqa"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"docqa"`

	NSQDHost string `envconfig:"NSQD_HOST" default:"nsqd:4150"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-1.5-pro-latest"`

	// QA pipeline
	ChunkSize         int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap      int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	ChunkSeparator    string `envconfig:"CHUNK_SEPARATOR" default:"\n"`
	RetrievalTopK     int    `envconfig:"RETRIEVAL_TOP_K" default:"4"`
	LLMTimeoutSeconds int    `envconfig:"LLM_TIMEOUT_SECONDS" default:"120"`

	// Rate limiting
	MinRequestIntervalSeconds float64 `envconfig:"MIN_REQUEST_INTERVAL_SECONDS" default:"3"`
	BackoffFloorSeconds       float64 `envconfig:"BACKOFF_FLOOR_SECONDS" default:"60"`
	BackoffCeilingSeconds     float64 `envconfig:"BACKOFF_CEILING_SECONDS" default:"300"`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8081"`
	UploadDir       string `envconfig:"DOCQA_UPLOAD_DIR" default:"./uploads"`
	MaxUploadSizeMB int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`
	MigrationPath   string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead, so a missing .env is fine
	_ = godotenv.Load(".env")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	return nil
}
