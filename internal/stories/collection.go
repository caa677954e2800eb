package stories

import (
	"sort"
	"strings"

	"penora-write/internal/domain"
)

// FilterAll отключает фильтр по типу.
const FilterAll = "all"

// SortOrder - порядок сортировки по savedAt.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// ReconcileMode определяет, как повторная загрузка с сервера сочетается с локальными историями.
type ReconcileMode string

const (
	// ReconcileOverwrite полностью заменяет коллекцию ответом сервера.
	ReconcileOverwrite ReconcileMode = "overwrite"
	// ReconcileMerge сохраняет local-only истории, которых нет в ответе сервера.
	ReconcileMerge ReconcileMode = "merge"
)

// Query - параметры производной выборки для дашборда.
type Query struct {
	Type   string // тип истории или FilterAll
	Search string
	Sort   SortOrder
}

// DefaultQuery - все типы, без поиска, сначала новые.
func DefaultQuery() Query {
	return Query{Type: FilterAll, Sort: SortNewest}
}

// Collection - упорядоченное множество историй текущей сессии.
// Порядок хранения - порядок вставки (новые в начале). Не потокобезопасна:
// владелец (workspace) сериализует доступ.
type Collection struct {
	items []domain.Story
}

// NewCollection создает пустую коллекцию.
func NewCollection() *Collection {
	return &Collection{}
}

// Seed заменяет коллекцию целиком (после загрузки при входе).
func (c *Collection) Seed(stories []domain.Story) {
	c.ReplaceAll(stories)
}

// ReplaceAll заменяет коллекцию целиком, без слияния.
func (c *Collection) ReplaceAll(stories []domain.Story) {
	c.items = dedupe(stories)
}

// Add добавляет историю в начало. История с уже существующим id заменяет прежнюю запись.
func (c *Collection) Add(story domain.Story) {
	c.removeID(story.ID)
	c.items = append([]domain.Story{story}, c.items...)
}

// Remove удаляет историю по id; отсутствие id - не ошибка.
func (c *Collection) Remove(id string) bool {
	return c.removeID(id)
}

// Get ищет историю по id.
func (c *Collection) Get(id string) (domain.Story, bool) {
	for _, s := range c.items {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Story{}, false
}

// MarkSynced помечает историю как подтвержденную сервером.
func (c *Collection) MarkSynced(id string) bool {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].SyncState = domain.SyncSynced
			return true
		}
	}
	return false
}

// Len возвращает число историй.
func (c *Collection) Len() int { return len(c.items) }

// All возвращает копию историй в порядке хранения.
func (c *Collection) All() []domain.Story {
	out := make([]domain.Story, len(c.items))
	copy(out, c.items)
	return out
}

// Reconcile применяет результат повторной загрузки с сервера.
// В режиме merge local-only истории, которых нет среди серверных
// (сопоставление по ClientID), остаются перед серверными в прежнем порядке.
func (c *Collection) Reconcile(remote []domain.Story, mode ReconcileMode) {
	if mode != ReconcileMerge {
		c.ReplaceAll(remote)
		return
	}

	known := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		known[r.ID] = struct{}{}
		if r.ClientID != "" {
			known[r.ClientID] = struct{}{}
		}
	}

	merged := make([]domain.Story, 0, len(c.items)+len(remote))
	for _, s := range c.items {
		if s.SyncState != domain.SyncLocalOnly {
			continue
		}
		if _, ok := known[s.ID]; ok {
			continue
		}
		if s.ClientID != "" {
			if _, ok := known[s.ClientID]; ok {
				continue
			}
		}
		merged = append(merged, s)
	}
	merged = append(merged, remote...)
	c.ReplaceAll(merged)
}

// Query возвращает производную выборку: фильтр -> поиск -> сортировка.
// Коллекцию не изменяет; при равных savedAt сохраняется порядок хранения.
func (c *Collection) Query(q Query) []domain.Story {
	filterType := strings.ToLower(strings.TrimSpace(q.Type))
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Story, 0, len(c.items))
	for _, s := range c.items {
		if filterType != "" && filterType != FilterAll && string(s.StoryType) != filterType {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(s.Title), needle) &&
			!strings.Contains(strings.ToLower(s.Body), needle) {
			continue
		}
		out = append(out, s)
	}

	oldest := q.Sort == SortOldest
	sort.SliceStable(out, func(i, j int) bool {
		if oldest {
			return out[i].SavedAt.Before(out[j].SavedAt)
		}
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out
}

func (c *Collection) removeID(id string) bool {
	for i, s := range c.items {
		if s.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// dedupe копирует срез, оставляя первое вхождение каждого id.
func dedupe(stories []domain.Story) []domain.Story {
	out := make([]domain.Story, 0, len(stories))
	seen := make(map[string]struct{}, len(stories))
	for _, s := range stories {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}
