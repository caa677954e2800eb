package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"penora-write/internal/domain"
	"penora-write/internal/stories"
)

// EditState - состояние дашборда
type EditState string

const (
	StateBrowsing EditState = "browsing"
	StateEditing  EditState = "editing"
)

// EditFields - временные поля редактирования
type EditFields struct {
	Title     string
	Body      string
	StoryType domain.StoryType
}

// Dashboard - производная выборка коллекции и машина состояний редактирования.
// Одновременно редактируется не больше одной истории.
type Dashboard struct {
	query   stories.Query
	state   EditState
	editID  string
	editing EditFields
}

func NewDashboard() *Dashboard {
	return &Dashboard{query: stories.DefaultQuery(), state: StateBrowsing}
}

func (d *Dashboard) Query() stories.Query { return d.query }

// SetFilter принимает тип истории или "all"
func (d *Dashboard) SetFilter(filter string) error {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		filter = stories.FilterAll
	}
	if filter != stories.FilterAll && !domain.StoryType(filter).Valid() {
		return domain.NewValidationError("filter", fmt.Sprintf("unknown story type %q", filter))
	}
	d.query.Type = filter
	return nil
}

func (d *Dashboard) SetSearch(search string) { d.query.Search = search }

func (d *Dashboard) SetSort(order stories.SortOrder) error {
	switch order {
	case stories.SortNewest, stories.SortOldest:
		d.query.Sort = order
		return nil
	default:
		return domain.NewValidationError("sort", fmt.Sprintf("unknown sort order %q", order))
	}
}

// ResetQuery возвращает фильтр, поиск и сортировку к значениям по умолчанию
func (d *Dashboard) ResetQuery() { d.query = stories.DefaultQuery() }

// View применяет текущую выборку к коллекции, не изменяя ее
func (d *Dashboard) View(c *stories.Collection) []domain.Story {
	return c.Query(d.query)
}

func (d *Dashboard) State() EditState { return d.state }

// Editing возвращает id редактируемой истории и временные поля
func (d *Dashboard) Editing() (string, EditFields, bool) {
	if d.state != StateEditing {
		return "", EditFields{}, false
	}
	return d.editID, d.editing, true
}

// StartEdit переходит в Editing(id) и заполняет поля из истории.
// Выбор другой истории во время редактирования сбрасывает текущие поля.
func (d *Dashboard) StartEdit(story domain.Story) {
	d.state = StateEditing
	d.editID = story.ID
	d.editing = EditFields{Title: story.Title, Body: story.Body, StoryType: story.StoryType}
}

// UpdateEdit меняет временные поля; исходная история не трогается
func (d *Dashboard) UpdateEdit(fields EditFields) error {
	if d.state != StateEditing {
		return domain.ErrNotEditing
	}
	if fields.StoryType != "" && !fields.StoryType.Valid() {
		return domain.NewValidationError("storyType", fmt.Sprintf("unknown story type %q", fields.StoryType))
	}
	if fields.StoryType == "" {
		fields.StoryType = d.editing.StoryType
	}
	d.editing = fields
	return nil
}

// SaveAsNew собирает новую историю из временных полей и возвращается в Browsing.
// Добавление в коллекцию выполняет вызывающий.
func (d *Dashboard) SaveAsNew(now time.Time) (domain.Story, error) {
	if d.state != StateEditing {
		return domain.Story{}, domain.ErrNotEditing
	}
	story := domain.NewLocalStory(d.editing.Title, d.editing.Body, d.editing.StoryType, now)
	d.Cancel()
	return story, nil
}

// Cancel отбрасывает временные поля
func (d *Dashboard) Cancel() {
	d.state = StateBrowsing
	d.editID = ""
	d.editing = EditFields{}
}

// StoryRemoved отменяет редактирование, если удалена редактируемая история
func (d *Dashboard) StoryRemoved(id string) {
	if d.state == StateEditing && d.editID == id {
		d.Cancel()
	}
}

// Reset - полный сброс дашборда (выход, сброс раскладки)
func (d *Dashboard) Reset() {
	d.Cancel()
	d.ResetQuery()
}
