// Package review turns stored responses into what the admin screen shows.
package review

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// MaxLifestyleScore is the number of dots in the lifestyle meter.
const MaxLifestyleScore = 5

// Row is one stored record prepared for the review table.
type Row struct {
	ID          string
	Date        string
	Time        string
	Class       string
	Gender      string
	Lifestyle   int
	TrustPerson string
	Reaction    string
}

// Dots returns one bool per meter position, true where the score reaches it.
func (r Row) Dots() []bool {
	dots := make([]bool, MaxLifestyleScore)
	for i := range dots {
		dots[i] = i < r.Lifestyle
	}
	return dots
}

// ClassCount is the number of responses for one class label.
type ClassCount struct {
	Class string
	Count int
}

// Report is the full review screen content.
type Report struct {
	Rows    []Row
	Count   int
	ByClass []ClassCount
	// ChartOptions is the echarts option object as JSON.
	ChartOptions string
}

// Summary is the aggregate line under the table.
func (r Report) Summary() string {
	return fmt.Sprintf("%d қатысушы жауап берді", r.Count)
}

// Empty reports whether there is nothing to review.
func (r Report) Empty() bool {
	return r.Count == 0
}

// Build prepares records for display, keeping their order. classOrder fixes
// the bar order; labels not in it follow in the order first seen.
func Build(records []models.StoredRecord, classOrder []string) (Report, error) {
	report := Report{
		Rows:  make([]Row, 0, len(records)),
		Count: len(records),
	}
	for _, rec := range records {
		report.Rows = append(report.Rows, newRow(rec))
	}
	report.ByClass = countByClass(records, classOrder)

	chartJSON, err := json.Marshal(generateClassChart(report.ByClass).JSON())
	if err != nil {
		return report, fmt.Errorf("failed to encode class chart: %w", err)
	}
	report.ChartOptions = string(chartJSON)
	return report, nil
}

func newRow(rec models.StoredRecord) Row {
	date, clock, _ := strings.Cut(rec.SubmittedAt, ", ")
	return Row{
		ID:          rec.ID,
		Date:        date,
		Time:        clock,
		Class:       orDash(rec.ClassLevel),
		Gender:      orDash(rec.Gender),
		Lifestyle:   lifestyleScore(rec.LifestyleImportance),
		TrustPerson: orDash(rec.TrustPerson),
		Reaction:    orDash(rec.ReactionToOffer),
	}
}

// lifestyleScore reads the 1..5 answer, treating anything unparsable as 0.
func lifestyleScore(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	if n > MaxLifestyleScore {
		return MaxLifestyleScore
	}
	return n
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func countByClass(records []models.StoredRecord, classOrder []string) []ClassCount {
	counts := make(map[string]int)
	var seen []string
	for _, rec := range records {
		label := orDash(rec.ClassLevel)
		if _, ok := counts[label]; !ok {
			seen = append(seen, label)
		}
		counts[label]++
	}

	out := make([]ClassCount, 0, len(counts))
	listed := make(map[string]bool, len(classOrder))
	for _, class := range classOrder {
		listed[class] = true
		out = append(out, ClassCount{Class: class, Count: counts[class]})
	}
	for _, label := range seen {
		if !listed[label] {
			out = append(out, ClassCount{Class: label, Count: counts[label]})
		}
	}
	return out
}

func generateClassChart(byClass []ClassCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Сыныптар бойынша жауаптар",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(byClass))
	items := make([]opts.BarData, 0, len(byClass))
	for _, c := range byClass {
		labels = append(labels, c.Class)
		items = append(items, opts.BarData{Value: c.Count})
	}

	bar.SetXAxis(labels).AddSeries("Жауаптар", items)
	// JSON only carries the category labels once they are copied onto the axis.
	bar.Validate()
	return bar
}
