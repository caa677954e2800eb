package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// KeyValueStore - долговременное хранилище плоских строк (аналог localStorage).
// Отсутствие ключа не является ошибкой: Get возвращает ok=false.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMany записывает все пары за один шаг: либо все, либо ни одной
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Open открывает хранилище по конфигурации
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (KeyValueStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverSQLite
	}
	logger.Debug("Opening local store", zap.String("driver", driver))

	switch driver {
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath()
		}
		return NewSQLiteStore(ctx, path, logger)
	case DriverRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			DB:        cfg.RedisDB,
			Password:  cfg.RedisPassword,
			KeyPrefix: cfg.KeyPrefix,
		}, logger)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
