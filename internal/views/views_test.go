package views

import (
	"bytes"
	"context"
	"testing"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/review"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func catalogue(t *testing.T) *models.Catalogue {
	t.Helper()
	cat, err := models.DefaultCatalogue()
	require.NoError(t, err)
	return cat
}

func TestLayout_WrapsChildren(t *testing.T) {
	ctx := templ.WithChildren(context.Background(), Intro("tok"))
	html := renderString(t, ctx, Layout("StopAddiction", "tok", "nonce-1"))

	assert.Contains(t, html, "<title>StopAddiction</title>")
	assert.Contains(t, html, `nonce="nonce-1"`)
	assert.Contains(t, html, `<main id="screen">`)
	assert.Contains(t, html, `action="/start"`)
	assert.Less(t, bytes.Index([]byte(html), []byte(`id="screen"`)), bytes.Index([]byte(html), []byte(`action="/start"`)))
}

func TestNewFormView_AppliesAnswersAndErrors(t *testing.T) {
	cat := catalogue(t)
	resp := models.NewSurveyResponse()
	resp.Set(models.FieldGender, "Қыз")
	resp.Set(models.FieldLifestyleImportance, "3")
	resp.Reasons = []string{"Стресс"}

	v := NewFormView(cat, resp, 3.0/15, []models.Field{models.FieldClass}, "tok")
	assert.Equal(t, 20, v.Percent)
	require.Len(t, v.Sections, 4)

	byID := map[string]QuestionView{}
	for _, s := range v.Sections {
		for _, q := range s.Questions {
			byID[q.ID] = q
		}
	}
	require.Len(t, byID, len(models.TrackedFields))

	class := byID[string(models.FieldClass)]
	assert.Equal(t, "Сыныбыңызды таңдаңыз", class.Error)
	assert.True(t, class.Focus)
	assert.False(t, byID[string(models.FieldGender)].Focus)

	scale := byID[string(models.FieldLifestyleImportance)]
	require.Len(t, scale.Options, 5)
	assert.True(t, scale.Options[2].Selected)

	for _, o := range byID[string(models.FieldReasons)].Options {
		assert.Equal(t, o.Value == "Стресс", o.Selected, o.Value)
	}
}

func TestForm_RendersInlineError(t *testing.T) {
	cat := catalogue(t)
	v := NewFormView(cat, models.NewSurveyResponse(), 0, []models.Field{models.FieldClass, models.FieldGender}, "tok")
	html := renderString(t, context.Background(), Form(v))

	assert.Contains(t, html, "Сыныбыңызды таңдаңыз")
	assert.Contains(t, html, "Жынысыңызды көрсетіңіз")
	assert.Contains(t, html, `id="progress"`)
	assert.Contains(t, html, `name="_csrf" value="tok"`)
	assert.Contains(t, html, "autofocus")
	assert.Contains(t, html, `class="question question-error"`)
	assert.Contains(t, html, `hx-vals="{&#34;name&#34;:&#34;class&#34;}"`)
}

func TestProgressAndReasonsPartials(t *testing.T) {
	html := renderString(t, context.Background(), Progress(47, true))
	assert.Contains(t, html, "47%")
	assert.Contains(t, html, `hx-swap-oob="true"`)

	cat := catalogue(t)
	resp := models.NewSurveyResponse()
	resp.Reasons = []string{"Жарнама"}
	q, ok := NewQuestionView(cat, models.FieldReasons, resp)
	require.True(t, ok)
	html = renderString(t, context.Background(), Reasons(q))
	assert.Contains(t, html, `value="Жарнама" checked`)
	assert.Contains(t, html, `class="tag tag-selected"`)
	assert.Contains(t, html, `hx-vals="{&#34;tag&#34;:&#34;Жарнама&#34;}"`)

	html = renderString(t, context.Background(), Progress(0, false))
	assert.NotContains(t, html, "hx-swap-oob")
	assert.Contains(t, html, `value="0"`)

	_, ok = NewQuestionView(cat, models.Field("nope"), resp)
	assert.False(t, ok)
}

func TestInsight_PollsUntilReady(t *testing.T) {
	loading := renderString(t, context.Background(), Insight(InsightView{}))
	assert.Contains(t, loading, `hx-get="/insight"`)

	ready := renderString(t, context.Background(), Insight(InsightView{Ready: true, Text: "Сен мықтысың"}))
	assert.NotContains(t, ready, "hx-get")
	assert.Contains(t, ready, "Сен мықтысың")

	page := renderString(t, context.Background(), Success(SuccessView{CSRF: "tok", Class: "10-сынып"}))
	assert.Contains(t, page, `action="/reset"`)
	assert.Contains(t, page, "10-сынып")
}

func TestAdmin_RendersTableAndClearAction(t *testing.T) {
	rec := models.StoredRecord{SurveyResponse: models.NewSurveyResponse(), ID: "1", SubmittedAt: "18.10.2026, 09:00:00"}
	rec.ClassLevel = "9-сынып"
	rec.Gender = "Ер"
	report, err := review.Build([]models.StoredRecord{rec}, []string{"9-сынып"})
	require.NoError(t, err)

	html := renderString(t, context.Background(), Admin(AdminView{CSRF: "tok", Nonce: "n", Report: report}))
	assert.Contains(t, html, "1 қатысушы жауап берді")
	assert.Contains(t, html, "18.10.2026")
	assert.Contains(t, html, `hx-get="/admin/clear"`)
	assert.Contains(t, html, `id="class-chart"`)

	empty, err := review.Build(nil, nil)
	require.NoError(t, err)
	html = renderString(t, context.Background(), Admin(AdminView{CSRF: "tok", Report: empty}))
	assert.Contains(t, html, "0 қатысушы жауап берді")
	assert.NotContains(t, html, `hx-get="/admin/clear"`)

	confirm := renderString(t, context.Background(), ClearConfirm("tok"))
	assert.Contains(t, confirm, `name="confirm" value="yes"`)
}
