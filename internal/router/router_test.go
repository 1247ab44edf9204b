package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/insight"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/store"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var csrfField = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

type client struct {
	t      *testing.T
	engine *gin.Engine
	cookie *http.Cookie
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookieName {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) token(body string) string {
	c.t.Helper()
	m := csrfField.FindStringSubmatch(body)
	require.Len(c.t, m, 2, "page carries a csrf token")
	return m[1]
}

func setup(t *testing.T, writeLimit uint) (*client, *survey.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	cat, err := models.DefaultCatalogue()
	require.NoError(t, err)
	responses := store.New(log, store.NewMemoryBackend(), "test")
	advisor := insight.NewAdvisor(log, insight.Unavailable{}, "", 0)
	registry := survey.NewRegistry(survey.NewService(context.Background(), log, responses, advisor))

	engine := Setup(log, Options{SessionSecret: "test-secret", WriteLimit: writeLimit}, registry, cat)
	return &client{t: t, engine: engine}, registry
}

func TestSetup_SecurityHeaders(t *testing.T) {
	c, _ := setup(t, 0)

	w := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'nonce-")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotNil(t, c.cookie)
}

func TestSetup_CSRFRequired(t *testing.T) {
	c, registry := setup(t, 0)
	c.do(http.MethodGet, "/", nil)

	w := c.do(http.MethodPost, "/start", url.Values{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPost, "/start", url.Values{"_csrf": {"forged"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1, registry.Len())
}

func TestSetup_SessionFollowsCookie(t *testing.T) {
	c, registry := setup(t, 0)

	token := c.token(c.do(http.MethodGet, "/", nil).Body.String())
	w := c.do(http.MethodPost, "/start", url.Values{"_csrf": {token}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = c.do(http.MethodGet, "/", nil)
	assert.Contains(t, w.Body.String(), `action="/submit"`)
	assert.Equal(t, 1, registry.Len())

	other, _ := setup(t, 0)
	other.engine = c.engine
	w = other.do(http.MethodGet, "/", nil)
	assert.Contains(t, w.Body.String(), `action="/start"`, "a new visitor starts at the intro")
	assert.Equal(t, 2, registry.Len())
}

func TestSetup_RateLimitsWrites(t *testing.T) {
	c, _ := setup(t, 2)

	token := c.token(c.do(http.MethodGet, "/", nil).Body.String())
	form := url.Values{"_csrf": {token}}

	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/submit", form).Code)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/submit", form).Code)
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/submit", form).Code)
}
