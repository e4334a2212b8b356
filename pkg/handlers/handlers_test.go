package handlers_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"site-cms/pkg/config"
	"site-cms/pkg/handlers"
	"site-cms/pkg/mocks"
	"site-cms/pkg/services"
)

const (
	testPassword   = "correct horse battery staple"
	testCookieName = "turfu_admin_auth"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Env: config.EnvTest,
		Server: config.ServerConfig{
			Port:          "8080",
			SessionSecret: "test-session-secret-0123456789abcdef",
		},
		Database: config.DatabaseConfig{
			AnonKey: "public-anon-key",
		},
		Admin: config.AdminConfig{
			CookieName: testCookieName,
		},
		Site: config.SiteConfig{
			URL:           "https://example.org",
			Locales:       []string{"fr", "en", "tr"},
			DefaultLocale: "fr",
		},
	}
}

type testServer struct {
	router *gin.Engine
	store  *mocks.MockArticleStore
	logs   *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockArticleStore(ctrl)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return &testServer{
		router: handlers.NewRouter(testConfig(), store, services.NewPasswordChecker(hash), logger),
		store:  store,
		logs:   logs,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// login returns the admin session cookie.
func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(rec, testCookieName)
	require.NotNil(t, cookie, "login must set the session cookie")
	return cookie
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	env := decode(t, rec)
	require.True(t, env.Success, rec.Body.String())

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
