package devserver

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User - учетная запись dev-сервера
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	GoogleSub    string
	CreatedAt    time.Time
}

// UserStore хранит пользователей в памяти
type UserStore struct {
	mu         sync.RWMutex
	byName     map[string]*User
	byGoogle   map[string]*User
	bcryptCost int
}

func NewUserStore(bcryptCost int) *UserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserStore{
		byName:     make(map[string]*User),
		byGoogle:   make(map[string]*User),
		bcryptCost: bcryptCost,
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Create регистрирует пользователя с паролем
func (s *UserStore) Create(username, password, email string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, err
	}

	key := normalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[key]; ok {
		return User{}, ErrUserAlreadyExists
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byName[key] = u
	return *u, nil
}

// Authenticate сверяет пароль с bcrypt-хешем
func (s *UserStore) Authenticate(username, password string) (User, error) {
	s.mu.RLock()
	u, ok := s.byName[normalizeUsername(username)]
	s.mu.RUnlock()
	if !ok || u.PasswordHash == nil {
		// Сравнение с фиктивным хешем выравнивает время ответа
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return *u, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("penora-dummy-password"), bcrypt.MinCost)

// UpsertFederated находит или создает пользователя по subject внешнего провайдера
func (s *UserStore) UpsertFederated(subject, email, name string) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byGoogle[subject]; ok {
		if email != "" {
			u.Email = email
		}
		return *u
	}

	username := name
	if username == "" {
		username = email
	}
	if username == "" {
		username = "google-" + subject
	}
	u := &User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		GoogleSub: subject,
		CreatedAt: time.Now().UTC(),
	}
	s.byGoogle[subject] = u
	return *u
}
