package taskmanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Ошибки менеджера задач
var (
	ErrTooManyTasks = errors.New("превышено максимальное количество активных задач")
	ErrTaskNotFound = errors.New("задача не найдена")
	ErrClosed       = errors.New("менеджер задач закрыт")
)

// ITaskManager определяет интерфейс для управления задачами.
// Отмены нет: начатая задача всегда доходит до конца.
type ITaskManager interface {
	Submit(ctx context.Context, name string, taskFunc TaskFunc) (*Task, error)
	GetTask(taskID uuid.UUID) (*Task, error)
	Wait(ctx context.Context) error
	CleanupTasks(age time.Duration)
	Shutdown(ctx context.Context) error
}

// TaskStatus представляет статус задачи
type TaskStatus string

// Возможные статусы задач
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskFunc представляет функцию, выполняемую в задаче
type TaskFunc func(ctx context.Context) (any, error)

// Task представляет асинхронную задачу
type Task struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time

	mu        sync.RWMutex
	status    TaskStatus
	result    any
	err       error
	updatedAt time.Time
	done      chan struct{}
}

// Status возвращает текущий статус задачи
func (t *Task) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Done закрывается по завершении задачи
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait ждет завершения задачи. Отмена ctx прекращает только ожидание, не саму задачу.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		t.mu.RLock()
		defer t.mu.RUnlock()
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Task) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Config содержит конфигурацию для TaskManager
type Config struct {
	MaxTasks int
	// Retention - сколько завершенная задача остается доступной через GetTask
	Retention time.Duration
}

const defaultRetention = 10 * time.Minute

// TaskManager управляет асинхронными задачами
type TaskManager struct {
	tasks     map[uuid.UUID]*Task
	mu        sync.RWMutex
	maxTasks  int
	retention time.Duration
	closed    bool
}

var _ ITaskManager = (*TaskManager)(nil)

// New создает новый экземпляр TaskManager
func New(cfg Config) *TaskManager {
	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	return &TaskManager{
		tasks:     make(map[uuid.UUID]*Task),
		maxTasks:  maxTasks,
		retention: retention,
	}
}

// Submit создает и запускает новую задачу.
// Задача получает контекст, отвязанный от отмены ctx, но с его значениями (в т.ч. логгером zerolog).
func (tm *TaskManager) Submit(ctx context.Context, name string, taskFunc TaskFunc) (*Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.closed {
		return nil, ErrClosed
	}
	tm.cleanupLocked(tm.retention)

	active := 0
	for _, task := range tm.tasks {
		if !task.finished() {
			active++
		}
	}
	if active >= tm.maxTasks {
		return nil, ErrTooManyTasks
	}

	now := time.Now()
	task := &Task{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		status:    TaskStatusPending,
		updatedAt: now,
		done:      make(chan struct{}),
	}
	tm.tasks[task.ID] = task

	taskCtx := context.WithoutCancel(ctx)

	go tm.runTask(taskCtx, task, taskFunc)

	return task, nil
}

// runTask выполняет задачу и обновляет ее статус
func (tm *TaskManager) runTask(ctx context.Context, task *Task, taskFunc TaskFunc) {
	logger := log.Ctx(ctx).With().Str("taskID", task.ID.String()).Str("task", task.Name).Logger()

	task.setStatus(TaskStatusRunning, nil, nil)
	logger.Debug().Msg("Task started")

	var (
		result any
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("паника в задаче %s: %v", task.Name, r)
			}
		}()
		result, err = taskFunc(ctx)
	}()

	if err != nil {
		logger.Error().Err(err).Msg("Task failed")
		task.setStatus(TaskStatusFailed, nil, err)
	} else {
		logger.Debug().Msg("Task completed")
		task.setStatus(TaskStatusCompleted, result, nil)
	}
	close(task.done)
}

func (t *Task) setStatus(status TaskStatus, result any, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.result = result
	t.err = err
	t.updatedAt = time.Now()
}

// GetTask возвращает информацию о задаче по ID
func (tm *TaskManager) GetTask(taskID uuid.UUID) (*Task, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	task, ok := tm.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return task, nil
}

// Wait ждет завершения всех запущенных задач, в том числе отправленных во время ожидания
func (tm *TaskManager) Wait(ctx context.Context) error {
	for {
		pending := tm.pending()
		if len(pending) == 0 {
			tm.CleanupTasks(tm.retention)
			return nil
		}
		for _, done := range pending {
			select {
			case <-done:
			case <-ctx.Done():
				return errors.New("таймаут при ожидании завершения задач")
			}
		}
	}
}

// pending снимает под блокировкой каналы незавершенных задач
func (tm *TaskManager) pending() []<-chan struct{} {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	var out []<-chan struct{}
	for _, task := range tm.tasks {
		if !task.finished() {
			out = append(out, task.done)
		}
	}
	return out
}

// Shutdown запрещает новые задачи и ожидает завершения текущих
func (tm *TaskManager) Shutdown(ctx context.Context) error {
	tm.mu.Lock()
	tm.closed = true
	tm.mu.Unlock()
	return tm.Wait(ctx)
}

// CleanupTasks удаляет завершенные задачи, которые старше указанного времени
func (tm *TaskManager) CleanupTasks(age time.Duration) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.cleanupLocked(age)
}

func (tm *TaskManager) cleanupLocked(age time.Duration) {
	now := time.Now()
	for id, task := range tm.tasks {
		if !task.finished() {
			continue
		}
		task.mu.RLock()
		old := now.Sub(task.updatedAt) > age
		task.mu.RUnlock()
		if old {
			delete(tm.tasks, id)
		}
	}
}
