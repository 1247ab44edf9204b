package views

import (
	"math"
	"strconv"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/review"
)

// OptionView is one selectable answer.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// QuestionView is one question with the respondent's current answer applied.
type QuestionView struct {
	ID          string
	Title       string
	Type        string
	Required    bool
	Error       string
	Focus       bool
	Value       string
	Placeholder string
	MinLabel    string
	MaxLabel    string
	Options     []OptionView
}

// SectionView is one card of the questionnaire.
type SectionView struct {
	Icon      string
	Title     string
	Subtitle  string
	Questions []QuestionView
}

// FormView is everything the questionnaire screen needs.
type FormView struct {
	CSRF     string
	Percent  int
	Sections []SectionView
}

// SuccessView is the thank-you screen.
type SuccessView struct {
	CSRF    string
	Class   string
	Insight InsightView
}

// InsightView is the insight block. Text is shown verbatim once Ready.
type InsightView struct {
	Ready bool
	Text  string
}

// AdminView is the review screen.
type AdminView struct {
	CSRF   string
	Nonce  string
	Report review.Report
}

// Percent converts a progress fraction to a whole percentage.
func Percent(progress float64) int {
	return int(math.Round(progress * 100))
}

// NewFormView lays the catalogue out with the current answers and errors.
// The first missing field gets focus.
func NewFormView(cat *models.Catalogue, resp models.SurveyResponse, progress float64, missing []models.Field, csrfToken string) FormView {
	errs := make(map[models.Field]string, len(missing))
	for _, f := range missing {
		errs[f] = cat.RequiredMessage(f)
	}
	var focus models.Field
	if len(missing) > 0 {
		focus = missing[0]
	}

	v := FormView{CSRF: csrfToken, Percent: Percent(progress)}
	for _, s := range cat.Sections {
		sv := SectionView{Icon: s.Icon, Title: s.Title, Subtitle: s.Subtitle}
		for _, q := range s.Questions {
			sv.Questions = append(sv.Questions, newQuestionView(q, resp, errs[q.ID], q.ID == focus))
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

// NewQuestionView renders a single question, used for partial swaps.
func NewQuestionView(cat *models.Catalogue, id models.Field, resp models.SurveyResponse) (QuestionView, bool) {
	q, ok := cat.Question(id)
	if !ok {
		return QuestionView{}, false
	}
	return newQuestionView(q, resp, "", false), true
}

func newQuestionView(q models.Question, resp models.SurveyResponse, errMsg string, focus bool) QuestionView {
	qv := QuestionView{
		ID:          string(q.ID),
		Title:       q.Title,
		Type:        q.Type,
		Required:    q.Required,
		Error:       errMsg,
		Focus:       focus,
		Value:       resp.Get(q.ID),
		Placeholder: q.Placeholder,
		MinLabel:    q.MinLabel,
		MaxLabel:    q.MaxLabel,
	}

	selected := func(value string) bool {
		if q.Type == models.TypeMulti {
			return resp.HasReason(value)
		}
		return qv.Value == value
	}

	if q.Type == models.TypeScale {
		for i := q.Min; i <= q.Max; i++ {
			value := strconv.Itoa(i)
			qv.Options = append(qv.Options, OptionView{Value: value, Label: value, Selected: selected(value)})
		}
		return qv
	}
	for _, o := range q.Options {
		qv.Options = append(qv.Options, OptionView{Value: o.Value, Label: o.Text(), Selected: selected(o.Value)})
	}
	return qv
}
