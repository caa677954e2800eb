package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"penora-write/internal/account"
	"penora-write/internal/domain"
	"penora-write/internal/generation"
	"penora-write/internal/session"
	"penora-write/internal/stories"
	"penora-write/internal/viewmodel"
	"penora-write/pkg/taskmanager"
	"penora-write/shared/logger"

	"go.uber.org/zap"
)

// Сообщения о результате сохранения
const (
	MessageSavedToBackend   = "Saved to backend!"
	MessageSavedToDashboard = "Saved to dashboard!"
)

// ErrStaleSession - сессия сменилась, пока запрос был в полете; результат отброшен.
var ErrStaleSession = errors.New("session changed while the request was in flight")

// Options - зависимости Workspace
type Options struct {
	Accounts      account.Gateway
	Generator     generation.Generator
	Session       *session.Store
	Tasks         taskmanager.ITaskManager
	ReconcileMode stories.ReconcileMode
	Now           func() time.Time
	Logger        *zap.Logger
}

// SaveResult - результат сохранения черновика
type SaveResult struct {
	Story          domain.Story
	SavedToBackend bool
	Message        string
}

// Workspace владеет всем состоянием клиента: сессией, коллекцией, черновиком,
// дашбордом и настройками. Вызовы шлюзов идут вне блокировки, результаты
// применяются под ней в порядке завершения и только если эпоха сессии не сменилась.
type Workspace struct {
	mu sync.Mutex

	accounts  account.Gateway
	generator generation.Generator
	session   *session.Store
	tasks     taskmanager.ITaskManager
	mode      stories.ReconcileMode
	now       func() time.Time
	logger    *zap.Logger

	collection  *stories.Collection
	composition *viewmodel.Composition
	dashboard   *viewmodel.Dashboard
	settings    *viewmodel.Settings
}

// New создает Workspace. Состояние сессии не загружается до Restore.
func New(opts Options) *Workspace {
	if opts.Tasks == nil {
		opts.Tasks = taskmanager.New(taskmanager.Config{})
	}
	if opts.ReconcileMode == "" {
		opts.ReconcileMode = stories.ReconcileMerge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Workspace{
		accounts:    opts.Accounts,
		generator:   opts.Generator,
		session:     opts.Session,
		tasks:       opts.Tasks,
		mode:        opts.ReconcileMode,
		now:         opts.Now,
		logger:      logger.OrNop(opts.Logger).Named("Workspace"),
		collection:  stories.NewCollection(),
		composition: viewmodel.NewComposition(),
		dashboard:   viewmodel.NewDashboard(),
		settings:    viewmodel.NewSettings(),
	}
}

// Restore загружает сессию из хранилища и, если она есть, заполняет коллекцию.
func (w *Workspace) Restore(ctx context.Context) (domain.Session, error) {
	w.mu.Lock()
	sess, err := w.session.Load(ctx)
	if err != nil {
		w.mu.Unlock()
		return domain.Session{}, err
	}
	w.resetLocked()
	epoch := w.session.Epoch()
	w.mu.Unlock()

	if sess.Authenticated() {
		w.seed(ctx, sess.Credential, epoch)
	}
	return sess, nil
}

// Login выполняет вход по логину и паролю
func (w *Workspace) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if err := validateCredentials(username, password); err != nil {
		return domain.Session{}, err
	}
	res, err := w.accounts.Authenticate(ctx, username, password, account.ModeLogin)
	if err != nil {
		return domain.Session{}, err
	}

	id, _ := session.ParseIdentity(res.Credential)
	displayName := firstNonEmpty(res.DisplayName, username)
	email := firstNonEmpty(res.Email, id.Email, username)
	return w.beginSession(ctx, res.Credential, displayName, email)
}

// Signup регистрирует пользователя. Сессия не создается: нужен отдельный Login.
func (w *Workspace) Signup(ctx context.Context, username, password string) (string, error) {
	if err := validateCredentials(username, password); err != nil {
		return "", err
	}
	res, err := w.accounts.Authenticate(ctx, username, password, account.ModeSignup)
	if err != nil {
		return "", err
	}
	w.logger.Info("Account created", zap.String("username", username))
	return res.Message, nil
}

// FederatedLogin выполняет вход по токену внешнего провайдера (Google ID token)
func (w *Workspace) FederatedLogin(ctx context.Context, providerToken string) (domain.Session, error) {
	if strings.TrimSpace(providerToken) == "" {
		return domain.Session{}, domain.NewValidationError("credential", "must not be empty")
	}
	res, err := w.accounts.AuthenticateFederated(ctx, providerToken)
	if err != nil {
		return domain.Session{}, err
	}

	id, _ := session.ParseIdentity(res.Credential)
	displayName := firstNonEmpty(res.DisplayName, id.Name)
	email := firstNonEmpty(res.Email, id.Email)
	return w.beginSession(ctx, res.Credential, displayName, email)
}

func (w *Workspace) beginSession(ctx context.Context, credential, displayName, email string) (domain.Session, error) {
	w.mu.Lock()
	if err := w.session.Login(ctx, credential, displayName, email); err != nil {
		w.mu.Unlock()
		return domain.Session{}, err
	}
	w.resetLocked()
	epoch := w.session.Epoch()
	sess := w.session.Current()
	w.mu.Unlock()

	w.logger.Info("Logged in", zap.String("displayName", displayName), zap.String("token", logger.TokenSnippet(credential)))
	w.seed(ctx, credential, epoch)
	return sess, nil
}

// seed загружает истории после входа; ошибка означает пустую коллекцию
func (w *Workspace) seed(ctx context.Context, credential string, epoch uint64) {
	list, err := w.accounts.ListMine(ctx, credential)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.Epoch() != epoch {
		w.logger.Debug("Dropping story list for a previous session")
		return
	}
	if err != nil {
		w.logger.Warn("Failed to fetch stories, starting with an empty dashboard", zap.Error(err))
		w.collection.Seed(nil)
		return
	}
	w.collection.Seed(list)
	w.logger.Debug("Stories loaded", zap.Int("count", len(list)))
}

// Logout очищает сессию, коллекцию, черновик и дашборд.
// Ошибка хранилища возвращается, но состояние в памяти очищается в любом случае.
func (w *Workspace) Logout(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.session.Logout(ctx)
	w.resetLocked()
	w.logger.Info("Logged out")
	return err
}

func (w *Workspace) resetLocked() {
	w.collection.ReplaceAll(nil)
	w.composition.Reset()
	w.dashboard.Reset()
}

// Session возвращает копию текущей сессии
func (w *Workspace) Session() domain.Session {
	return w.session.Current()
}

func (w *Workspace) requireSession() (domain.Session, uint64, error) {
	sess := w.session.Current()
	if !sess.Authenticated() {
		return domain.Session{}, 0, domain.ErrNotAuthenticated
	}
	return sess, w.session.Epoch(), nil
}

// Refetch повторно загружает истории и сводит их с локальными.
// При ошибке коллекция остается прежней.
func (w *Workspace) Refetch(ctx context.Context) error {
	w.mu.Lock()
	sess, epoch, err := w.requireSession()
	w.mu.Unlock()
	if err != nil {
		return err
	}

	list, err := w.accounts.ListMine(ctx, sess.Credential)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.Epoch() != epoch {
		return ErrStaleSession
	}
	if err != nil {
		w.logger.Warn("Refetch failed, keeping current stories", zap.Error(err))
		return err
	}
	w.collection.Reconcile(list, w.mode)
	return nil
}

// Draft возвращает копию черновика
func (w *Workspace) Draft() domain.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.composition.Draft()
}

// EditDraft изменяет черновик под блокировкой
func (w *Workspace) EditDraft(fn func(c *viewmodel.Composition) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.session.Current().Authenticated() {
		return domain.ErrNotAuthenticated
	}
	return fn(w.composition)
}

// Generate отправляет черновик генератору. Ошибка генерации не возвращается:
// в черновик записывается fallback-строка. Возвращает итоговый текст черновика.
func (w *Workspace) Generate(ctx context.Context) (string, error) {
	w.mu.Lock()
	_, epoch, err := w.requireSession()
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	if w.composition.Draft().Busy {
		w.mu.Unlock()
		return "", domain.NewValidationError("idea", "generation already in progress")
	}
	req, err := w.composition.BeginGeneration()
	w.mu.Unlock()
	if err != nil {
		return "", err
	}

	text, genErr := w.generator.Generate(ctx, req)
	if genErr != nil {
		w.logger.Warn("Generation failed, showing fallback text", zap.Error(genErr))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.Epoch() != epoch {
		return "", ErrStaleSession
	}
	w.composition.FinishGeneration(text, genErr)
	return w.composition.Draft().GeneratedText, nil
}

// Regenerate повторяет генерацию с теми же полями черновика
func (w *Workspace) Regenerate(ctx context.Context) (string, error) {
	return w.Generate(ctx)
}

// SaveDraft сохраняет сгенерированный текст: сначала на сервер (best effort),
// затем в локальную коллекцию, затем повторно загружает список.
func (w *Workspace) SaveDraft(ctx context.Context) (SaveResult, error) {
	w.mu.Lock()
	sess, epoch, err := w.requireSession()
	if err != nil {
		w.mu.Unlock()
		return SaveResult{}, err
	}
	if !w.composition.HasSavableText() {
		w.mu.Unlock()
		return SaveResult{}, domain.NewValidationError("story", "nothing to save")
	}
	draft := w.composition.Draft()
	story := domain.NewLocalStory(draft.Title, draft.GeneratedText, draft.StoryType, w.now())
	w.mu.Unlock()

	saveErr := w.accounts.Save(ctx, sess.Credential, account.SaveInput{
		Title:     story.Title,
		Body:      story.Body,
		StoryType: story.StoryType,
		ClientID:  story.ClientID,
	})

	w.mu.Lock()
	if w.session.Epoch() != epoch {
		w.mu.Unlock()
		return SaveResult{}, ErrStaleSession
	}
	res := SaveResult{Message: MessageSavedToDashboard}
	if saveErr == nil {
		story.SyncState = domain.SyncSynced
		res.SavedToBackend = true
		res.Message = MessageSavedToBackend
	} else {
		w.logger.Warn("Backend save failed, story kept locally", zap.String("storyID", story.ID), zap.Error(saveErr))
	}
	w.collection.Add(story)
	res.Story = story
	w.mu.Unlock()

	if err := w.Refetch(ctx); err != nil {
		w.logger.Debug("Refetch after save failed", zap.Error(err))
	}
	return res, nil
}

// Stories возвращает выборку дашборда по текущим параметрам
func (w *Workspace) Stories() []domain.Story {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dashboard.View(w.collection)
}

// AllStories возвращает коллекцию в порядке хранения
func (w *Workspace) AllStories() []domain.Story {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.collection.All()
}

// Story ищет историю по id
func (w *Workspace) Story(id string) (domain.Story, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.collection.Get(id)
	if !ok {
		return domain.Story{}, domain.ErrStoryNotFound
	}
	return s, nil
}

// Dashboard изменяет параметры выборки и состояние редактирования под блокировкой
func (w *Workspace) Dashboard(fn func(d *viewmodel.Dashboard) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.dashboard)
}

// StartEdit переводит дашборд в редактирование истории id
func (w *Workspace) StartEdit(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.collection.Get(id)
	if !ok {
		return domain.ErrStoryNotFound
	}
	w.dashboard.StartEdit(s)
	return nil
}

// SaveEditAsNew добавляет отредактированную копию как новую историю; оригинал не меняется
func (w *Workspace) SaveEditAsNew() (domain.Story, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	story, err := w.dashboard.SaveAsNew(w.now())
	if err != nil {
		return domain.Story{}, err
	}
	w.collection.Add(story)
	return story, nil
}

// CancelEdit отбрасывает временные поля редактирования
func (w *Workspace) CancelEdit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dashboard.Cancel()
}

// DeleteStory удаляет историю локально; отсутствие id - не ошибка
func (w *Workspace) DeleteStory(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	removed := w.collection.Remove(id)
	w.dashboard.StoryRemoved(id)
	return removed
}

// ClearDashboard очищает коллекцию целиком
func (w *Workspace) ClearDashboard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collection.ReplaceAll(nil)
	w.dashboard.Cancel()
}

// RenameDisplay меняет отображаемое имя локально
func (w *Workspace) RenameDisplay(ctx context.Context, name string) error {
	return w.session.RenameDisplay(ctx, strings.TrimSpace(name))
}

// Theme возвращает текущую тему
func (w *Workspace) Theme() viewmodel.Theme {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings.Theme()
}

// ToggleTheme переключает тему
func (w *Workspace) ToggleTheme() viewmodel.Theme {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings.ToggleTheme()
}

// SetTheme задает тему явно
func (w *Workspace) SetTheme(t viewmodel.Theme) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settings.SetTheme(t)
}

// ResetLayout сбрасывает тему, параметры дашборда и редактирование
func (w *Workspace) ResetLayout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settings.ResetLayout()
	w.dashboard.Reset()
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return domain.NewValidationError("username", "must not be empty")
	}
	if password == "" {
		return domain.NewValidationError("password", "must not be empty")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
