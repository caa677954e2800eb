package devserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoryRecord - история в формате API: _id, client_id, saved_at в RFC 3339
type StoryRecord struct {
	ID        string    `json:"_id"`
	ClientID  string    `json:"client_id,omitempty"`
	Title     string    `json:"title"`
	Story     string    `json:"story"`
	StoryType string    `json:"story_type"`
	SavedAt   time.Time `json:"saved_at"`
}

// StoryStore хранит истории пользователей в памяти, новые в начале
type StoryStore struct {
	mu      sync.RWMutex
	byOwner map[string][]StoryRecord
	now     func() time.Time
}

func NewStoryStore() *StoryStore {
	return &StoryStore{byOwner: make(map[string][]StoryRecord), now: time.Now}
}

// Save добавляет историю владельца. Повтор с тем же client_id заменяет прежнюю запись.
func (s *StoryStore) Save(ownerID, clientID, title, story, storyType string) StoryRecord {
	rec := StoryRecord{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Title:     title,
		Story:     story,
		StoryType: storyType,
		SavedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byOwner[ownerID]
	if clientID != "" {
		for i := range list {
			if list[i].ClientID == clientID {
				rec.ID = list[i].ID
				list = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
	s.byOwner[ownerID] = append([]StoryRecord{rec}, list...)
	return rec
}

// List возвращает копию историй владельца
func (s *StoryStore) List(ownerID string) []StoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byOwner[ownerID]
	out := make([]StoryRecord, len(list))
	copy(out, list)
	return out
}
