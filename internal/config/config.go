package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr               string        `yaml:"addr"`
	JWTSecret          string        `yaml:"jwt_secret"`
	APITimeout         time.Duration `yaml:"timeout"`
	TokenDuration      time.Duration `yaml:"token_duration"`
	DatabasePath       string        `yaml:"database_path"`
	TokenEncryptionKey string        `yaml:"token_encryption_key"`
	DefaultTimezone    string        `yaml:"default_timezone"`
	CORSOrigins        string        `yaml:"cors_origins"`

	Worker   WorkerConfig   `yaml:"worker"`
	LLM      LLMConfig      `yaml:"llm"`
	LeetCode LeetCodeConfig `yaml:"leetcode"`
	LinkedIn LinkedInConfig `yaml:"linkedin"`
	Arxiv    ArxivConfig    `yaml:"arxiv"`
}

type WorkerConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval"`
	BatchSize        int           `yaml:"batch_size"`
	MaxAttempts      int           `yaml:"max_attempts"`
	RetryBaseMinutes int           `yaml:"retry_base_minutes"`
	TmpDir           string        `yaml:"tmp_dir"`
}

type LLMConfig struct {
	// Provider selects the backing model API: "openai" (any OpenAI-compatible
	// endpoint) or "ollama".
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	OllamaBaseURL string        `yaml:"ollama_base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	Retries       int           `yaml:"retries"`
	Backoff       time.Duration `yaml:"backoff"`
}

type LeetCodeConfig struct {
	GraphQLURL         string        `yaml:"graphql_url"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	TestTimeout        time.Duration `yaml:"test_timeout"`
	TestCommand        string        `yaml:"test_command"`
	DefaultMaxAttempts int           `yaml:"default_max_attempts"`
	RetryBaseMinutes   int           `yaml:"retry_base_minutes"`
}

type LinkedInConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ArxivConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:               getEnv("AUTOFEEDR_ADDR", ":8080"),
		JWTSecret:          getEnv("AUTOFEEDR_JWT_SECRET", "supersecretkey"),
		APITimeout:         15 * time.Second,
		TokenDuration:      1 * time.Hour,
		DatabasePath:       getEnv("AUTOFEEDR_DATABASE_PATH", "autofeedr.db"),
		TokenEncryptionKey: getEnv("AUTOFEEDR_TOKEN_ENCRYPTION_KEY", ""),
		DefaultTimezone:    getEnv("AUTOFEEDR_DEFAULT_TIMEZONE", "America/Sao_Paulo"),
		CORSOrigins:        getEnv("AUTOFEEDR_CORS_ORIGINS", "*"),
		Worker: WorkerConfig{
			PollInterval:     15 * time.Second,
			BatchSize:        10,
			MaxAttempts:      3,
			RetryBaseMinutes: 2,
			TmpDir:           getEnv("AUTOFEEDR_TMP_DIR", os.TempDir()),
		},
		LLM: LLMConfig{
			Provider:      getEnv("AUTOFEEDR_LLM_PROVIDER", "openai"),
			Model:         getEnv("AUTOFEEDR_LLM_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: getEnv("AUTOFEEDR_OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OllamaBaseURL: getEnv("AUTOFEEDR_OLLAMA_BASE_URL", "http://localhost:11434"),
			Timeout:       60 * time.Second,
			Retries:       3,
			Backoff:       500 * time.Millisecond,
		},
		LeetCode: LeetCodeConfig{
			GraphQLURL:         getEnv("AUTOFEEDR_LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
			HTTPTimeout:        20 * time.Second,
			TestTimeout:        20 * time.Second,
			TestCommand:        getEnv("AUTOFEEDR_LEETCODE_TEST_COMMAND", "python3"),
			DefaultMaxAttempts: 5,
			RetryBaseMinutes:   2,
		},
		LinkedIn: LinkedInConfig{
			BaseURL: getEnv("AUTOFEEDR_LINKEDIN_BASE_URL", "https://api.linkedin.com"),
			Timeout: 30 * time.Second,
		},
		Arxiv: ArxivConfig{
			BaseURL: getEnv("AUTOFEEDR_ARXIV_BASE_URL", "https://export.arxiv.org/api/query"),
			Timeout: 30 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Worker.BatchSize <= 0 {
		cfg.Worker.BatchSize = 10
	}
	// Cron matching is minute-granular: a poll interval above 60s would skip
	// matching minutes entirely.
	if cfg.Worker.PollInterval > time.Minute {
		return nil, fmt.Errorf("worker poll_interval %s exceeds cron granularity (60s)", cfg.Worker.PollInterval)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
