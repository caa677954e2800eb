package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"penora-write/internal/generation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeFederated struct {
	identity FederatedIdentity
	err      error
}

func (f fakeFederated) Verify(context.Context, string) (FederatedIdentity, error) {
	return f.identity, f.err
}

func testConfig() *Config {
	return &Config{
		Port:       "0",
		Env:        "test",
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

func newTestServer(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	if deps.Generator == nil {
		deps.Generator = generation.NewTemplate(1)
	}
	srv, err := New(testConfig(), deps, zap.NewNop())
	require.NoError(t, err)
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestSignupAndLogin(t *testing.T) {
	h := newTestServer(t, Deps{})

	code, body := doJSON(t, h, http.MethodPost, "/signup", "", map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User created successfully", body["message"])

	code, body = doJSON(t, h, http.MethodPost, "/signup", "", map[string]string{"username": "Alice", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already exists", body["detail"])

	code, body = doJSON(t, h, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "wrong-pw"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", body["detail"])

	code, body = doJSON(t, h, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, "alice", body["username"])
}

func TestSignupValidation(t *testing.T) {
	h := newTestServer(t, Deps{})

	code, body := doJSON(t, h, http.MethodPost, "/signup", "", map[string]string{"username": "al", "password": "123"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	items := body["detail"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "username must be at least 3 characters", items[0].(map[string]any)["msg"])
	assert.Equal(t, "password must be at least 6 characters", items[1].(map[string]any)["msg"])

	code, body = doJSON(t, h, http.MethodPost, "/signup", "", map[string]string{"username": "alice", "password": "secret1", "email": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "email is not a valid address", body["detail"].([]any)[0].(map[string]any)["msg"])

	code, _ = doJSON(t, h, http.MethodPost, "/signup", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestStoriesRequireToken(t *testing.T) {
	h := newTestServer(t, Deps{})

	code, body := doJSON(t, h, http.MethodGet, "/stories/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Not authenticated", body["detail"])

	code, _ = doJSON(t, h, http.MethodGet, "/stories/my", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSaveAndListArePerUser(t *testing.T) {
	h := newTestServer(t, Deps{})
	token := func(name string) string {
		doJSON(t, h, http.MethodPost, "/signup", "", map[string]string{"username": name, "password": "secret1"})
		_, body := doJSON(t, h, http.MethodPost, "/login", "", map[string]string{"username": name, "password": "secret1"})
		return body["access_token"].(string)
	}
	alice, bob := token("alice"), token("bobby")

	code, _ := doJSON(t, h, http.MethodPost, "/stories/save", alice, map[string]string{
		"title": "", "story": "Once upon a time", "story_type": "Poem", "client_id": "local-1-abcdef12",
	})
	require.Equal(t, http.StatusOK, code)
	// Повтор с тем же client_id не создает дубликат
	doJSON(t, h, http.MethodPost, "/stories/save", alice, map[string]string{
		"title": "Again", "story": "Once upon a time", "story_type": "poem", "client_id": "local-1-abcdef12",
	})

	_, body := doJSON(t, h, http.MethodGet, "/stories/my", alice, nil)
	list := body["stories"].([]any)
	require.Len(t, list, 1)
	rec := list[0].(map[string]any)
	assert.NotEmpty(t, rec["_id"])
	assert.Equal(t, "local-1-abcdef12", rec["client_id"])
	assert.Equal(t, "Again", rec["title"])
	assert.Equal(t, "poem", rec["story_type"])
	_, err := time.Parse(time.RFC3339, rec["saved_at"].(string))
	assert.NoError(t, err)

	_, body = doJSON(t, h, http.MethodGet, "/stories/my", bob, nil)
	assert.Empty(t, body["stories"])

	code, _ = doJSON(t, h, http.MethodPost, "/stories/save", bob, map[string]string{"title": "x", "story": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestGoogleLogin(t *testing.T) {
	h := newTestServer(t, Deps{Federated: fakeFederated{identity: FederatedIdentity{Subject: "g-1", Email: "ann@example.com", Name: "Ann"}}})
	code, body := doJSON(t, h, http.MethodPost, "/google-login", "", map[string]string{"credential": "id-token"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ann", body["username"])
	assert.Equal(t, "ann@example.com", body["email"])

	h = newTestServer(t, Deps{Federated: fakeFederated{err: errors.New("bad audience")}})
	code, body = doJSON(t, h, http.MethodPost, "/google-login", "", map[string]string{"credential": "id-token"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid Google token", body["detail"])

	h = newTestServer(t, Deps{})
	code, _ = doJSON(t, h, http.MethodPost, "/google-login", "", map[string]string{"credential": "id-token"})
	assert.Equal(t, http.StatusNotImplemented, code)
}

func TestGenerate(t *testing.T) {
	h := newTestServer(t, Deps{})

	code, body := doJSON(t, h, http.MethodPost, "/generate", "", map[string]string{
		"idea": "a lighthouse keeper", "storyType": "Short", "tone": "dramatic", "length": "short",
	})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["story"])

	code, body = doJSON(t, h, http.MethodPost, "/generate", "", map[string]string{
		"idea": " ", "storyType": "short", "tone": "dramatic", "length": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, body["detail"])
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, Deps{})
	code, body := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestStoryStore_NewestFirst(t *testing.T) {
	s := NewStoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }

	s.Save("u", "", "first", "a", "short")
	s.Save("u", "", "second", "b", "short")
	list := s.List("u")
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.True(t, list[0].SavedAt.After(list[1].SavedAt))
}

func TestUserStore_Federated(t *testing.T) {
	s := NewUserStore(bcrypt.MinCost)
	a := s.UpsertFederated("sub", "", "")
	assert.Equal(t, "google-sub", a.Username)
	b := s.UpsertFederated("sub", "new@example.com", "Other")
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "new@example.com", b.Email)

	_, err := s.Authenticate("google-sub", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DEVSERVER_PORT", "9090")
	t.Setenv("DEVSERVER_CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, generation.BackendTemplate, cfg.Generation.Backend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

// Единственный тест, включающий ginprometheus: коллекторы регистрируются глобально
func TestMetricsEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = true
	srv, err := New(cfg, Deps{Generator: generation.NewTemplate(1)}, zap.NewNop())
	require.NoError(t, err)

	doJSON(t, srv.Handler(), http.MethodGet, "/health", "", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "penora_devserver_gin_requests_total")
}
