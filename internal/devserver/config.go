package devserver

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config - настройки dev-сервера. Читается из YAML (необязательно) и DEVSERVER_* переменных.
type Config struct {
	Port               string        `yaml:"port" env:"DEVSERVER_PORT" env-default:"8000"`
	Env                string        `yaml:"env" env:"DEVSERVER_ENV" env-default:"development"`
	LogLevel           string        `yaml:"log_level" env:"DEVSERVER_LOG_LEVEL" env-default:"info"`
	JWTSecret          string        `yaml:"jwt_secret" env:"DEVSERVER_JWT_SECRET" env-default:"penora-dev-secret"`
	TokenTTL           time.Duration `yaml:"token_ttl" env:"DEVSERVER_TOKEN_TTL" env-default:"24h"`
	BcryptCost         int           `yaml:"bcrypt_cost" env:"DEVSERVER_BCRYPT_COST" env-default:"10"`
	GoogleClientID     string        `yaml:"google_client_id" env:"DEVSERVER_GOOGLE_CLIENT_ID"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"DEVSERVER_CORS_ALLOWED_ORIGINS" env-separator:","`
	MetricsEnabled     bool          `yaml:"metrics_enabled" env:"DEVSERVER_METRICS_ENABLED" env-default:"true"`

	Generation GenerationConfig `yaml:"generation"`
}

// GenerationConfig - генератор за POST /generate
type GenerationConfig struct {
	Backend   string `yaml:"backend" env:"DEVSERVER_GENERATION_BACKEND" env-default:"template"`
	AIBaseURL string `yaml:"ai_base_url" env:"DEVSERVER_AI_BASE_URL"`
	AIModel   string `yaml:"ai_model" env:"DEVSERVER_AI_MODEL"`
	AIAPIKey  string `yaml:"ai_api_key" env:"DEVSERVER_AI_API_KEY"`
}

// LoadConfig читает конфигурацию. Пустой путь или отсутствующий файл - только переменные окружения.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("ошибка чтения файла конфигурации '%s': %w", path, err)
			}
			return &cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	return &cfg, nil
}
