package database

import (
	"os"
	"path/filepath"
)

// Поддерживаемые драйверы хранилища
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config описывает, где хранится локальное состояние клиента
type Config struct {
	Driver string

	// SQLite
	Path string

	// Redis
	RedisAddr     string
	RedisDB       int
	RedisPassword string
	KeyPrefix     string
}

// DefaultSQLitePath возвращает путь к базе по умолчанию (~/.penora/state.db)
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".penora", "state.db")
	}
	return filepath.Join(home, ".penora", "state.db")
}
