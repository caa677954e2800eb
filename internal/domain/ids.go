package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewLocalID генерирует идентификатор клиентской истории: время + случайный суффикс.
func NewLocalID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("local-%d-%s", now.UnixMilli(), suffix)
}

// IsLocalID сообщает, создан ли идентификатор на клиенте.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, "local-")
}
