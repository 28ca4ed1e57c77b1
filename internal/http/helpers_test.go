package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"bizdir/internal/cache"
	"bizdir/internal/config"
	"bizdir/internal/domain"
	"bizdir/internal/events"
	"bizdir/internal/http/handlers"
	"bizdir/internal/repos"
	"bizdir/internal/repos/memstore"
	"bizdir/internal/storage"
)

const password = "Passw0rd!"

var category = repos.DefaultCategories()[0].ID

type testEnv struct {
	app      *fiber.App
	store    *memstore.Store
	events   *events.Recorder
	mediaDir string
}

func newTestEnv(t *testing.T, opts handlers.AppOptions) *testEnv {
	t.Helper()
	store := memstore.NewSeeded()
	if err := repos.SeedSuperAdmin(context.Background(), store, "root@example.com", password); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	mediaDir := t.TempDir()
	st, err := storage.NewLocalStorage(mediaDir, "/media")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	cfg := config.Config{
		Auth:  config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Cache: config.CacheConfig{TTL: time.Minute},
	}
	rec := &events.Recorder{}
	deps := handlers.NewDeps(store, cfg, cache.NewInMemoryCache(time.Minute), st, rec)

	opts.TemplatesDir = "../../web/templates"
	if opts.MediaDir == "" {
		opts.MediaDir = mediaDir
	}
	return &testEnv{app: handlers.NewApp(deps, opts), store: store, events: rec, mediaDir: mediaDir}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r apiResponse) code() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

// call sends a JSON request, optionally as a bearer, and decodes the envelope.
func (e *testEnv) call(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := e.do(t, req)
	defer resp.Body.Close()

	var out apiResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("%s %s: body is not an envelope: %s", method, path, raw)
	}
	return resp.StatusCode, out
}

func jsonUnmarshal(raw []byte, v any) error { return json.Unmarshal(raw, v) }

func decodeData[T any](t *testing.T, r apiResponse) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(r.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, r.Data)
	}
	return v
}

func (e *testEnv) login(t *testing.T, email string) (string, domain.User) {
	t.Helper()
	status, resp := e.call(t, "POST", "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login %s: %d %+v", email, status, resp.Error)
	}
	out := decodeData[struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}](t, resp)
	return out.Token, out.User
}

// signUp registers a USER account and signs in.
func (e *testEnv) signUp(t *testing.T, email string) (string, domain.User) {
	t.Helper()
	status, resp := e.call(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": email, "name": "Test", "password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: %d %+v", email, status, resp.Error)
	}
	return e.login(t, email)
}

// owner signs up and upgrades to BUSINESS_OWNER.
func (e *testEnv) owner(t *testing.T, email string) (string, domain.User) {
	t.Helper()
	token, u := e.signUp(t, email)
	status, resp := e.call(t, "POST", "/api/v1/auth/upgrade-role", token, map[string]string{
		"userId": u.ID, "role": string(domain.RoleBusinessOwner),
	})
	if status != http.StatusOK {
		t.Fatalf("upgrade %s: %d %+v", email, status, resp.Error)
	}
	return token, u
}

func (e *testEnv) createBusiness(t *testing.T, token, slug string) domain.Business {
	t.Helper()
	status, resp := e.call(t, "POST", "/api/v1/businesses", token, map[string]any{
		"name":        "Joe's Coffee",
		"slug":        slug,
		"description": "Small batch roasts.",
		"categoryId":  category,
		"whatsapp":    "+15551234567",
	})
	if status != http.StatusCreated {
		t.Fatalf("create %s: %d %+v", slug, status, resp.Error)
	}
	return decodeData[domain.Business](t, resp)
}
