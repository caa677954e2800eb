package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"penora-write/internal/database"
	"penora-write/internal/generation"
	"penora-write/internal/stories"
	"penora-write/shared/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultAPIURL - адрес Account Service и Generation Service по умолчанию
const DefaultAPIURL = "https://penora-write-backend-production.up.railway.app"

// Путь к секрету с ключом AI API по умолчанию (Docker Secrets)
const defaultAIKeySecret = "/run/secrets/penora_ai_api_key"

// Config содержит конфигурацию клиента Penora Write
type Config struct {
	APIURL        string        `envconfig:"PENORA_API_URL" default:"https://penora-write-backend-production.up.railway.app"`
	GenerationURL string        `envconfig:"PENORA_GENERATION_URL"`
	HTTPTimeout   time.Duration `envconfig:"PENORA_HTTP_TIMEOUT" default:"30s"`

	// Генератор: remote | openai | ollama | template
	GenerationBackend string `envconfig:"PENORA_GENERATION_BACKEND" default:"remote"`
	AIBaseURL         string `envconfig:"PENORA_AI_BASE_URL"`
	AIModel           string `envconfig:"PENORA_AI_MODEL"`
	AIAPIKeyFile      string `envconfig:"PENORA_AI_API_KEY_FILE"`
	// Секретное поле: читается из файла, переменная окружения - запасной вариант
	AIAPIKey string `ignored:"true"`

	// Локальное хранилище сессии: sqlite | redis | memory
	StoreDriver   string `envconfig:"PENORA_STORE_DRIVER" default:"sqlite"`
	StorePath     string `envconfig:"PENORA_STORE_PATH"`
	RedisAddr     string `envconfig:"PENORA_REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"PENORA_REDIS_DB" default:"0"`
	RedisPassword string `envconfig:"PENORA_REDIS_PASSWORD"`
	RedisPrefix   string `envconfig:"PENORA_REDIS_KEY_PREFIX" default:"penora:"`

	ReconcileMode string `envconfig:"PENORA_RECONCILE_MODE" default:"merge"`
	MaxTasks      int    `envconfig:"PENORA_MAX_TASKS" default:"10"`

	LogLevel    string `envconfig:"PENORA_LOG_LEVEL" default:"warn"`
	LogEncoding string `envconfig:"PENORA_LOG_ENCODING" default:"console"`
	LogOutput   string `envconfig:"PENORA_LOG_OUTPUT"`
}

// Load загружает конфигурацию из .env (если есть), переменных окружения и секретов
func Load(envFiles ...string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.GenerationURL == "" {
		cfg.GenerationURL = cfg.APIURL
	}

	key, err := loadAIKey(cfg.AIAPIKeyFile)
	if err != nil {
		return nil, err
	}
	cfg.AIAPIKey = key

	if _, err := cfg.Reconcile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadAIKey читает ключ из файла секрета; без файла берет PENORA_AI_API_KEY.
// Явно заданный файл обязан существовать.
func loadAIKey(path string) (string, error) {
	if path != "" {
		return readSecret(path)
	}
	if key, err := readSecret(defaultAIKeySecret); err == nil {
		return key, nil
	}
	return strings.TrimSpace(os.Getenv("PENORA_AI_API_KEY")), nil
}

func readSecret(filePath string) (string, error) {
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// Reconcile возвращает режим согласования коллекции
func (c *Config) Reconcile() (stories.ReconcileMode, error) {
	switch mode := stories.ReconcileMode(strings.ToLower(strings.TrimSpace(c.ReconcileMode))); mode {
	case "":
		return stories.ReconcileMerge, nil
	case stories.ReconcileMerge, stories.ReconcileOverwrite:
		return mode, nil
	default:
		return "", errors.New("PENORA_RECONCILE_MODE must be 'merge' or 'overwrite'")
	}
}

func (c *Config) Database() database.Config {
	return database.Config{
		Driver:        c.StoreDriver,
		Path:          c.StorePath,
		RedisAddr:     c.RedisAddr,
		RedisDB:       c.RedisDB,
		RedisPassword: c.RedisPassword,
		KeyPrefix:     c.RedisPrefix,
	}
}

func (c *Config) Generation() generation.Config {
	return generation.Config{
		Backend:   c.GenerationBackend,
		BaseURL:   c.GenerationURL,
		AIBaseURL: c.AIBaseURL,
		AIModel:   c.AIModel,
		AIAPIKey:  c.AIAPIKey,
	}
}

func (c *Config) Logger() logger.Config {
	return logger.Config{Level: c.LogLevel, Encoding: c.LogEncoding, OutputPath: c.LogOutput}
}
