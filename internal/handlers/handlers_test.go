package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/insight"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/store"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type constProvider string

func (p constProvider) Insight(context.Context, models.SurveyResponse) (string, error) {
	return string(p), nil
}

type testApp struct {
	engine  *gin.Engine
	store   *store.ResponseStore
	session *survey.Session
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := zap.NewNop()
	cat, err := models.DefaultCatalogue()
	require.NoError(t, err)

	responses := store.New(log, store.NewMemoryBackend(), "test")
	advisor := insight.NewAdvisor(log, constProvider("Өз жолыңды таңда."), "", 0)
	svc := survey.NewService(context.Background(), log, responses, advisor)
	sess := survey.NewRegistry(svc).Get("visitor")

	screens := NewScreens(log, cat)
	surveyHandler := NewSurveyHandler(log, screens, cat)
	reviewHandler := NewReviewHandler(log, screens)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(SurveySessionKey, sess)
		c.Set(CSRFTokenKey, "tok")
		c.Set(CSPNonceKey, "nonce")
		c.Next()
	})
	r.GET("/", surveyHandler.Show)
	r.POST("/start", surveyHandler.Start)
	r.POST("/form/field", surveyHandler.SetField)
	r.POST("/form/reason", surveyHandler.ToggleReason)
	r.POST("/submit", surveyHandler.Submit)
	r.GET("/insight", surveyHandler.Insight)
	r.POST("/reset", surveyHandler.Reset)
	r.POST("/admin/toggle", reviewHandler.Toggle)
	r.POST("/admin/back", reviewHandler.Back)
	r.GET("/admin/clear", reviewHandler.ConfirmClear)
	r.POST("/admin/clear", reviewHandler.Clear)

	return &testApp{engine: r, store: responses, session: sess}
}

func (a *testApp) do(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) waitInsight(t *testing.T) string {
	t.Helper()
	var body string
	require.Eventually(t, func() bool {
		w := a.do(http.MethodGet, "/insight", nil, true)
		body = w.Body.String()
		return w.Code == http.StatusOK && !strings.Contains(body, "hx-get")
	}, time.Second, 5*time.Millisecond)
	return body
}

func TestShow_FullPageAndPartial(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), `action="/start"`)

	w = app.do(http.MethodGet, "/", nil, true)
	assert.NotContains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), `action="/start"`)
}

func TestStart_RedirectsPlainPosts(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/start", url.Values{}, false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, survey.FormActive, app.session.State())
}

func TestFormFlow_FieldReasonSubmit(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/start", url.Values{}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Сыныбыңыз")

	w = app.do(http.MethodPost, "/form/field", url.Values{"name": {"class"}, "value": {"10-сынып"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "7%")

	w = app.do(http.MethodPost, "/form/field", url.Values{"name": {"gender"}, "gender": {"Ер"}}, true)
	assert.Contains(t, w.Body.String(), "13%")

	w = app.do(http.MethodPost, "/form/reason", url.Values{"tag": {"Стресс"}}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Стресс" checked`)
	assert.Contains(t, w.Body.String(), `hx-swap-oob="true"`)

	w = app.do(http.MethodPost, "/submit", url.Values{}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Рақмет")

	records := app.store.ListAll(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, "10-сынып", records[0].ClassLevel)
	assert.Equal(t, "Ер", records[0].Gender)
	assert.Equal(t, []string{"Стресс"}, records[0].Reasons)

	assert.Contains(t, app.waitInsight(t), "Өз жолыңды таңда.")

	w = app.do(http.MethodPost, "/reset", url.Values{}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNoContent, app.do(http.MethodGet, "/insight", nil, true).Code)
}

func TestToggleReason_PlainPostRedirects(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/start", url.Values{}, false)

	w := app.do(http.MethodPost, "/form/reason", url.Values{"tag": {"Стресс"}}, false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), `hx-swap-oob`)
	assert.Equal(t, []string{"Стресс"}, app.session.Snapshot().Response.Reasons)

	page := app.do(http.MethodGet, "/", nil, false).Body.String()
	assert.True(t, strings.HasSuffix(strings.TrimSpace(page), "</html>"))
	assert.Contains(t, page, `value="Стресс" checked`)
}

func TestSubmit_ValidationFailure(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/start", url.Values{}, true)

	w := app.do(http.MethodPost, "/submit", url.Values{"_form": {"full"}, "gender": {"Қыз"}}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Сыныбыңызды таңдаңыз")
	assert.NotContains(t, w.Body.String(), "Жынысыңызды көрсетіңіз")
	assert.Equal(t, survey.FormActive, app.session.State())
	assert.Empty(t, app.store.ListAll(context.Background()))
}

func TestSubmit_FullFormPost(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/start", url.Values{}, true)
	app.do(http.MethodPost, "/form/reason", url.Values{"tag": {"Жарнама"}}, true)

	form := url.Values{
		"_form":               {"full"},
		"class":               {"11-сынып"},
		"gender":              {"Қыз"},
		"lifestyleImportance": {"5"},
		"reasons":             {"Стресс", "Жалғыздық"},
	}
	w := app.do(http.MethodPost, "/submit", form, false)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	records := app.store.ListAll(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, "11-сынып", records[0].ClassLevel)
	assert.Equal(t, "5", records[0].LifestyleImportance)
	assert.Equal(t, []string{"Стресс", "Жалғыздық"}, records[0].Reasons)
	app.waitInsight(t)
}

func TestInvalidTransitionsAreConflicts(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusConflict, app.do(http.MethodPost, "/reset", url.Values{}, true).Code)
	assert.Equal(t, http.StatusConflict, app.do(http.MethodPost, "/submit", url.Values{}, true).Code)
	assert.Equal(t, http.StatusConflict, app.do(http.MethodPost, "/form/field", url.Values{"name": {"class"}}, true).Code)
	assert.Equal(t, http.StatusConflict, app.do(http.MethodGet, "/admin/clear", nil, true).Code)
	assert.Equal(t, survey.Intro, app.session.State())
}

func TestReview_ToggleConfirmClear(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		rec := models.StoredRecord{SurveyResponse: models.NewSurveyResponse(), ID: id, SubmittedAt: "18.10.2026, 12:00:00"}
		rec.ClassLevel = "9-сынып"
		require.NoError(t, app.store.Append(ctx, rec))
	}

	w := app.do(http.MethodPost, "/admin/toggle", url.Values{}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2 қатысушы жауап берді")

	w = app.do(http.MethodGet, "/admin/clear", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="confirm" value="yes"`)

	w = app.do(http.MethodPost, "/admin/clear", url.Values{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, app.store.ListAll(ctx), 2)

	w = app.do(http.MethodPost, "/admin/clear", url.Values{"confirm": {"yes"}}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0 қатысушы жауап берді")
	assert.Empty(t, app.store.ListAll(ctx))

	w = app.do(http.MethodPost, "/admin/back", url.Values{}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, survey.Intro, app.session.State())
}
