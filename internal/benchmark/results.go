package benchmark

import (
	"time"

	"github.com/moguls753/runtime-benchmark/internal/benchmark/docker"
	"github.com/moguls753/runtime-benchmark/internal/benchmark/statistics"
)

// Results is everything a run produced, as plain data for the renderers
type Results struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Targets    []string   `json:"targets"`    // configuration order
	Categories []Category `json:"categories"` // execution order

	Summaries      map[Category]map[string]SummaryRecord         `json:"summaries"`
	Comparisons    map[Category]map[string]statistics.Comparison `json:"comparisons,omitempty"`
	Resources      map[Category]map[string]docker.Usage          `json:"resources,omitempty"`
	BreakingPoints map[string]BreakingPointResult                `json:"breaking_points,omitempty"`
}

// NewResults creates an empty result collection
func NewResults(runID string, targets []Target) *Results {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return &Results{
		RunID:          runID,
		StartedAt:      time.Now(),
		Targets:        names,
		Summaries:      make(map[Category]map[string]SummaryRecord),
		Comparisons:    make(map[Category]map[string]statistics.Comparison),
		Resources:      make(map[Category]map[string]docker.Usage),
		BreakingPoints: make(map[string]BreakingPointResult),
	}
}

// AddSummary records the summary of one round
func (r *Results) AddSummary(category Category, target string, record SummaryRecord) {
	r.touch(category)
	if r.Summaries[category] == nil {
		r.Summaries[category] = make(map[string]SummaryRecord)
	}
	r.Summaries[category][target] = record
}

// AddComparison records how a target compares with the category's reference target
func (r *Results) AddComparison(category Category, target string, cmp statistics.Comparison) {
	if r.Comparisons[category] == nil {
		r.Comparisons[category] = make(map[string]statistics.Comparison)
	}
	r.Comparisons[category][target] = cmp
}

// AddResources records the resource usage of a target during one round
func (r *Results) AddResources(category Category, target string, usage docker.Usage) {
	if r.Resources[category] == nil {
		r.Resources[category] = make(map[string]docker.Usage)
	}
	r.Resources[category][target] = usage
}

// AddBreakingPoint records the search result of one target
func (r *Results) AddBreakingPoint(target string, result BreakingPointResult) {
	r.touch(CategoryBreakingPoint)
	r.BreakingPoints[target] = result
}

// SummaryCategories returns the categories that hold summary records, in execution order
func (r *Results) SummaryCategories() []Category {
	out := make([]Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		if _, ok := r.Summaries[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (r *Results) touch(category Category) {
	for _, c := range r.Categories {
		if c == category {
			return
		}
	}
	r.Categories = append(r.Categories, category)
}
