package review

import (
	"encoding/json"
	"testing"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classes = []string{"9-сынып", "10-сынып", "11-сынып"}

func stored(id, class, submittedAt string) models.StoredRecord {
	rec := models.StoredRecord{SurveyResponse: models.NewSurveyResponse(), ID: id, SubmittedAt: submittedAt}
	rec.ClassLevel = class
	rec.Gender = "Қыз"
	return rec
}

func TestBuild_Rows(t *testing.T) {
	first := stored("b", "11-сынып", "18.10.2026, 10:15:00")
	first.LifestyleImportance = "4"
	first.TrustPerson = "Ата-ана"
	first.ReactionToOffer = "Бас тартамын"
	second := stored("a", "9-сынып", "17.10.2026")

	report, err := Build([]models.StoredRecord{first, second}, classes)
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, Row{
		ID:          "b",
		Date:        "18.10.2026",
		Time:        "10:15:00",
		Class:       "11-сынып",
		Gender:      "Қыз",
		Lifestyle:   4,
		TrustPerson: "Ата-ана",
		Reaction:    "Бас тартамын",
	}, report.Rows[0])

	assert.Equal(t, "17.10.2026", report.Rows[1].Date)
	assert.Empty(t, report.Rows[1].Time)
	assert.Equal(t, "-", report.Rows[1].TrustPerson)
	assert.Equal(t, 0, report.Rows[1].Lifestyle)

	assert.Equal(t, 2, report.Count)
	assert.Equal(t, "2 қатысушы жауап берді", report.Summary())
	assert.False(t, report.Empty())
}

func TestLifestyleScore(t *testing.T) {
	tests := map[string]int{"": 0, "abc": 0, "1": 1, " 5 ": 5, "9": 5, "-2": 0}
	for raw, want := range tests {
		assert.Equal(t, want, lifestyleScore(raw), raw)
	}
	assert.Equal(t, []bool{true, true, false, false, false}, Row{Lifestyle: 2}.Dots())
}

func TestBuild_ByClassAndChart(t *testing.T) {
	records := []models.StoredRecord{
		stored("1", "10-сынып", ""),
		stored("2", "10-сынып", ""),
		stored("3", "8-сынып", ""),
		stored("4", "9-сынып", ""),
	}

	report, err := Build(records, classes)
	require.NoError(t, err)

	assert.Equal(t, []ClassCount{
		{"9-сынып", 1},
		{"10-сынып", 2},
		{"11-сынып", 0},
		{"8-сынып", 1},
	}, report.ByClass)

	var options map[string]any
	require.NoError(t, json.Unmarshal([]byte(report.ChartOptions), &options))
	assert.Contains(t, report.ChartOptions, "Сыныптар бойынша жауаптар")
	assert.Contains(t, report.ChartOptions, "8-сынып")
	assert.Contains(t, options, "series")

	xAxis, ok := options["xAxis"].([]any)
	require.True(t, ok)
	require.Len(t, xAxis, 1)
	axis, ok := xAxis[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"9-сынып", "10-сынып", "11-сынып", "8-сынып"}, axis["data"])
}

func TestBuild_Empty(t *testing.T) {
	report, err := Build(nil, classes)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.NotNil(t, report.Rows)
	assert.Equal(t, "0 қатысушы жауап берді", report.Summary())
	assert.Len(t, report.ByClass, 3)
}
