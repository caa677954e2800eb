package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"penora-write/internal/database"
	"penora-write/internal/domain"

	"go.uber.org/zap"
)

// Ключи в долговременном хранилище
const (
	KeyCredential  = "token"
	KeyDisplayName = "user"
	KeyEmail       = "email"
)

// Store хранит текущую сессию и зеркалит ее в KeyValueStore.
// Каждый Login/Logout увеличивает эпоху; асинхронные операции сверяют ее
// перед изменением состояния.
type Store struct {
	mu      sync.RWMutex
	kv      database.KeyValueStore
	current domain.Session
	epoch   uint64
	logger  *zap.Logger
}

// NewStore создает Store поверх хранилища. Состояние не загружается до Load.
func NewStore(kv database.KeyValueStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger.Named("SessionStore")}
}

// Load восстанавливает сессию из хранилища при старте.
func (s *Store) Load(ctx context.Context) (domain.Session, error) {
	var loaded domain.Session
	for key, dst := range map[string]*string{
		KeyCredential:  &loaded.Credential,
		KeyDisplayName: &loaded.DisplayName,
		KeyEmail:       &loaded.Email,
	} {
		v, _, err := s.kv.Get(ctx, key)
		if err != nil {
			return domain.Session{}, fmt.Errorf("load session key %q: %w", key, err)
		}
		*dst = v
	}

	// Без credential остальные поля не имеют смысла
	if loaded.Credential == "" {
		loaded = domain.Session{}
	}

	s.mu.Lock()
	s.current = loaded
	s.epoch++
	s.mu.Unlock()

	s.logger.Debug("Session loaded", zap.Bool("authenticated", loaded.Authenticated()))
	return loaded, nil
}

// Login устанавливает и сохраняет все три поля.
func (s *Store) Login(ctx context.Context, credential, displayName, email string) error {
	if credential == "" {
		return domain.NewValidationError("credential", "must not be empty")
	}
	next := domain.Session{Credential: credential, DisplayName: displayName, Email: email}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.current = next
	s.epoch++

	s.logger.Info("Session started", zap.String("displayName", displayName), zap.Uint64("epoch", s.epoch))
	return nil
}

// Logout очищает сессию и удаляет ее из хранилища.
// Состояние в памяти очищается даже при ошибке хранилища.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = domain.Session{}
	s.epoch++

	if err := s.kv.Delete(ctx, KeyCredential, KeyDisplayName, KeyEmail); err != nil {
		s.logger.Error("Failed to clear persisted session", zap.Error(err))
		return fmt.Errorf("clear persisted session: %w", err)
	}
	s.logger.Info("Session cleared", zap.Uint64("epoch", s.epoch))
	return nil
}

// RenameDisplay меняет только локальное отображаемое имя; Account Service не вызывается.
func (s *Store) RenameDisplay(ctx context.Context, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return domain.NewValidationError("display_name", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := s.kv.Set(ctx, KeyDisplayName, newName); err != nil {
		return fmt.Errorf("persist display name: %w", err)
	}
	s.current.DisplayName = newName
	return nil
}

// Current возвращает копию текущей сессии.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Epoch возвращает номер текущей сессии для проверки живости.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// persist пишет три ключа одной операцией, чтобы Load не собрал сессию из двух пользователей
func (s *Store) persist(ctx context.Context, sess domain.Session) error {
	err := s.kv.SetMany(ctx, map[string]string{
		KeyCredential:  sess.Credential,
		KeyDisplayName: sess.DisplayName,
		KeyEmail:       sess.Email,
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
