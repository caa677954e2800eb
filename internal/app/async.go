package app

import (
	"context"

	"penora-write/pkg/taskmanager"
)

// Асинхронные варианты запускают операцию в taskmanager. Отменить их нельзя:
// задача работает на контексте, отвязанном от отмены вызывающего, а устаревший
// результат отбрасывается проверкой эпохи сессии внутри самой операции.

// GenerateAsync запускает Generate; результат задачи - string
func (w *Workspace) GenerateAsync(ctx context.Context) (*taskmanager.Task, error) {
	return w.tasks.Submit(ctx, "generate", func(ctx context.Context) (any, error) {
		return w.Generate(ctx)
	})
}

// SaveDraftAsync запускает SaveDraft; результат задачи - SaveResult
func (w *Workspace) SaveDraftAsync(ctx context.Context) (*taskmanager.Task, error) {
	return w.tasks.Submit(ctx, "save-draft", func(ctx context.Context) (any, error) {
		return w.SaveDraft(ctx)
	})
}

// RefetchAsync запускает Refetch
func (w *Workspace) RefetchAsync(ctx context.Context) (*taskmanager.Task, error) {
	return w.tasks.Submit(ctx, "refetch", func(ctx context.Context) (any, error) {
		return nil, w.Refetch(ctx)
	})
}

// Wait ждет завершения всех асинхронных операций
func (w *Workspace) Wait(ctx context.Context) error {
	return w.tasks.Wait(ctx)
}
