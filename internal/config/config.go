package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/shouni/mnemonic-image-kit/internal/logger"
	"github.com/shouni/mnemonic-image-kit/pkg/prompt"
)

// ErrInvalidConfig は設定値が不正であることを示します。
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	BackendChat   = "chat"
	BackendGemini = "gemini"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Logger logger.Config

	LLMEndpoint       string `env:"LLM_ENDPOINT" env-default:"http://localhost:8080/v1/chat/completions" validate:"required,http_url"`
	LLMModel          string `env:"LLM_MODEL" env-default:"gpt-4" validate:"required"`
	ImageEndpoint     string `env:"IMAGE_ENDPOINT" env-default:"http://localhost:8080/v1/images/generations" validate:"required,http_url"`
	FallbackImagePath string `env:"FALLBACK_IMAGE_PATH" env-default:"default.jpeg"`
	// PromptTemplate が空の場合は prompt.DefaultTemplate を使います。
	PromptTemplate  string        `env:"PROMPT_TEMPLATE"`
	NegativePrompt  string        `env:"NEGATIVE_PROMPT" env-default:"Text"`
	OutputDirectory string        `env:"OUTPUT_DIRECTORY" env-default:"images/" validate:"required"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"120s" validate:"gt=0"`

	PromptBackend string `env:"PROMPT_BACKEND" env-default:"chat" validate:"oneof=chat gemini"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY" validate:"required_if=PromptBackend gemini"`
	GeminiModel   string `env:"GEMINI_MODEL" env-default:"gemini-2.0-flash" validate:"required"`

	BatchConcurrency int     `env:"BATCH_CONCURRENCY" env-default:"2" validate:"min=1"`
	BatchRatePerSec  float64 `env:"BATCH_RATE_PER_SEC" env-default:"1" validate:"gt=0"`

	PushGatewayURL string `env:"PUSHGATEWAY_URL" validate:"omitempty,http_url"`
}

var validate = validator.New()

// Load は .env ファイル（あれば）と環境変数から設定を読み込み、検証します。
// envFiles を省略するとカレントディレクトリの .env を読みます。
// 既に設定されている環境変数は .env の値で上書きされません。
func Load(envFiles ...string) (*Config, error) {
	// .env がなくても続行する。
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = prompt.DefaultTemplate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate はタグによる検証と、タグで表せない検証を行います。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := prompt.ValidateTemplate(c.PromptTemplate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
