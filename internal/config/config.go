package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `envconfig:"OPENAI_BASE_URL"`
	OpenAIChatModel      string `envconfig:"OPENAI_CHAT_MODEL"`
	OpenAIEmbeddingModel string `envconfig:"OPENAI_EMBEDDING_MODEL"`

	// Local snapshot of the embeddings corpus. Ignored when S3 is configured.
	EmbeddingsFilePath string `envconfig:"EMBEDDINGS_FILE_PATH" default:"./data/cv-embeddings.json"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	EmailFrom    string `envconfig:"EMAIL_FROM"`
	EmailTo      string `envconfig:"EMAIL_TO"`

	S3Endpoint    string `envconfig:"S3_ENDPOINT"`
	S3AccessKey   string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey   string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket      string `envconfig:"S3_BUCKET" default:"cvagent-snapshots"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3SnapshotKey string `envconfig:"S3_SNAPSHOT_KEY" default:"cv-embeddings.json"`

	ChatDailyLimit    int `envconfig:"CHAT_DAILY_LIMIT" default:"30"`
	ContactDailyLimit int `envconfig:"CONTACT_DAILY_LIMIT" default:"3"`

	// Bootstrap: create an initial API key on startup
	InitAPIKey string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CVAGENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.EmailFrom != ""
}
