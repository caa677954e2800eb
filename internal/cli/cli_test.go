package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"penora-write/internal/app"
	"penora-write/internal/config"
	"penora-write/internal/database"
	"penora-write/internal/devserver"
	"penora-write/internal/domain"
	"penora-write/internal/generation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CLISuite запускает команды против dev-сервера; хранилище общее,
// как у последовательных запусков penora на одной машине.
type CLISuite struct {
	suite.Suite
	server *httptest.Server
	store  *database.MemoryStore
	cfg    *config.Config
}

func (s *CLISuite) SetupTest() {
	srv, err := devserver.New(&devserver.Config{
		Env:        "test",
		JWTSecret:  "cli-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, devserver.Deps{Generator: generation.NewTemplate(3)}, zap.NewNop())
	s.Require().NoError(err)
	s.server = httptest.NewServer(srv.Handler())
	s.store = database.NewMemoryStore()
	s.cfg = &config.Config{
		APIURL:            s.server.URL,
		GenerationURL:     s.server.URL,
		HTTPTimeout:       5 * time.Second,
		GenerationBackend: generation.BackendRemote,
		StoreDriver:       database.DriverMemory,
		ReconcileMode:     "merge",
		MaxTasks:          4,
	}
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	root := NewRootCommand(Options{
		Config:     s.cfg,
		Store:      s.store,
		HTTPClient: s.server.Client(),
		Logger:     zap.NewNop(),
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (s *CLISuite) mustRun(args ...string) string {
	out, err := s.run(args...)
	s.Require().NoError(err, out)
	return out
}

// workspace восстанавливает сессию так же, как это делает любая команда
func (s *CLISuite) workspace() *app.Workspace {
	e := &env{opts: Options{Config: s.cfg, Store: s.store, HTTPClient: s.server.Client(), Logger: zap.NewNop()}}
	ws, err := e.workspace(context.Background())
	s.Require().NoError(err)
	return ws
}

func (s *CLISuite) storyIDs() []string {
	var ids []string
	for _, st := range s.workspace().AllStories() {
		ids = append(ids, st.ID)
	}
	return ids
}

// shell прогоняет строки через оболочку поверх ws
func (s *CLISuite) shell(ws *app.Workspace, lines ...string) string {
	var out bytes.Buffer
	err := runShell(context.Background(), ws, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	s.Require().NoError(err, out.String())
	return out.String()
}

func (s *CLISuite) TestFullFlow() {
	s.Contains(s.mustRun("whoami"), "Not logged in")

	s.Contains(s.mustRun("signup", "writer", "-p", "secret1"), "penora login writer")
	s.Contains(s.mustRun("whoami"), "Not logged in")

	s.Contains(s.mustRun("login", "writer", "-p", "secret1"), "Logged in as writer (0 stories)")
	out := s.mustRun("whoami")
	s.Contains(out, "writer <writer>")
	s.Contains(out, "Token expires")

	out = s.mustRun("generate", "--idea", "a clockmaker's last wish", "--title", "Tick", "--type", "Poem", "--save")
	s.Contains(out, "Saved to backend!")

	out = s.mustRun("stories", "list")
	s.Contains(out, "Tick")
	s.Contains(out, "synced")

	out = s.mustRun("stories", "list", "--type", "novel")
	s.Contains(out, "No stories yet")

	s.Contains(s.mustRun("settings", "rename", "  Clockwork  "), "Display name set to Clockwork")
	s.Contains(s.mustRun("whoami"), "Clockwork")

	s.Contains(s.mustRun("logout"), "Logged out")
	s.Contains(s.mustRun("whoami"), "Not logged in")
}

func (s *CLISuite) TestExportAndEdit() {
	s.mustRun("signup", "editor", "-p", "secret1")
	s.mustRun("login", "editor", "-p", "secret1")
	s.mustRun("generate", "--idea", "rain over a quiet harbor", "--title", "Harbor", "--save")

	ids := s.storyIDs()
	s.Require().Len(ids, 1)
	id := ids[0]

	dir := s.T().TempDir()
	out := s.mustRun("stories", "export", id, "--format", "docx", "--out", dir)
	s.Contains(out, filepath.Join(dir, "Harbor.docx"))
	_, err := os.Stat(filepath.Join(dir, "Harbor.docx"))
	s.NoError(err)

	out = s.mustRun("stories", "edit", id, "--title", "Harbor II", "--body", "Rain again.", "--print", "--export", "txt", "--out", dir)
	s.Contains(out, "Saved as new story local-")
	s.Contains(out, "Rain again.")
	s.Contains(out, filepath.Join(dir, "Harbor II.txt"))
	data, err := os.ReadFile(filepath.Join(dir, "Harbor II.txt"))
	s.Require().NoError(err)
	s.Equal("Rain again.", string(data))

	_, err = s.run("stories", "export", "missing-id")
	s.Error(err)
}

func (s *CLISuite) TestStoriesShell() {
	s.mustRun("signup", "keeper", "-p", "secret1")
	s.mustRun("login", "keeper", "-p", "secret1")
	s.mustRun("generate", "--idea", "a lighthouse that forgets", "--title", "Harbor", "--type", "poem", "--save")

	ids := s.storyIDs()
	s.Require().Len(ids, 1)
	original := ids[0]
	ws := s.workspace()

	out := s.shell(ws, `edit `+original+` --title "Harbor II" --body "Second light."`)
	m := regexp.MustCompile(`Saved as new story (local-\S+)`).FindStringSubmatch(out)
	s.Require().Len(m, 2, out)
	created := m[1]

	dir := s.T().TempDir()
	out = s.shell(ws,
		"list --sort oldest",
		"show "+created,
		"export "+created+" -f html -o "+dir,
		"delete "+original,
		"list",
		"bogus",
		"exit",
		"list",
	)
	s.Contains(out, "Harbor II")
	s.Contains(out, "Second light.")
	s.Contains(out, filepath.Join(dir, "Harbor II.html"))
	s.Contains(out, "Deleted "+original)
	s.Contains(out, `Error: unknown command "bogus"`)
	_, err := os.Stat(filepath.Join(dir, "Harbor II.html"))
	s.NoError(err)

	_, err = ws.Story(original)
	s.ErrorIs(err, domain.ErrStoryNotFound)
	got, err := ws.Story(created)
	s.Require().NoError(err)
	s.Equal(domain.StoryTypePoem, got.StoryType)
	s.Equal(domain.SyncLocalOnly, got.SyncState)

	out = s.shell(ws, "list --type novel", "list")
	s.Equal(2, strings.Count(out, "No stories yet"), "filter persists between shell commands")

	out = s.shell(ws, "reset-layout", "clear", "list")
	s.Contains(out, "Dashboard cleared")
	s.Contains(out, "No stories yet")
	s.Empty(ws.AllStories())

	// Новый запуск снова загружает список с сервера
	s.Len(s.storyIDs(), 1)
}

func (s *CLISuite) TestStoriesShellCommand() {
	_, err := s.run("stories", "shell")
	s.ErrorIs(err, domain.ErrNotAuthenticated)

	s.mustRun("signup", "reader", "-p", "secret1")
	s.mustRun("login", "reader", "-p", "secret1")

	root := NewRootCommand(Options{Config: s.cfg, Store: s.store, HTTPClient: s.server.Client(), Logger: zap.NewNop()})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader("list\ntheme toggle\n"))
	root.SetArgs([]string{"stories", "shell"})
	s.Require().NoError(root.ExecuteContext(context.Background()))
	s.Contains(out.String(), "Dashboard for reader: 0 stories")
	s.Contains(out.String(), "No stories yet")
	s.Contains(out.String(), "Theme: dark")
}

func (s *CLISuite) TestGenerateValidation() {
	s.mustRun("signup", "poet", "-p", "secret1")
	s.mustRun("login", "poet", "-p", "secret1")

	_, err := s.run("generate", "--idea", "x", "--tone", "grim")
	s.Error(err)
	_, err = s.run("generate")
	s.Error(err)
}

func (s *CLISuite) TestRequiresLogin() {
	_, err := s.run("generate", "--idea", "anything")
	s.Error(err)
	_, err = s.run("login", "nobody", "-p", "secret1")
	s.Error(err)
}

func (s *CLISuite) TestShellTheme() {
	s.mustRun("signup", "painter", "-p", "secret1")
	s.mustRun("login", "painter", "-p", "secret1")
	ws := s.workspace()

	out := s.shell(ws, "theme", "theme toggle", "theme dark", "theme neon", "reset-layout", "theme")
	s.Equal(2, strings.Count(out, "Theme: light"))
	s.Equal(2, strings.Count(out, "Theme: dark"))
	s.Contains(out, "Layout reset")
	s.Contains(out, "Error: ")
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func TestReadPassword(t *testing.T) {
	root := NewRootCommand(Options{})
	root.SetIn(strings.NewReader("from-stdin\n"))
	pw, err := readPassword(root, "")
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", pw)

	pw, err = readPassword(root, "flag")
	require.NoError(t, err)
	assert.Equal(t, "flag", pw)
}
