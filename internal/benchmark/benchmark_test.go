package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_URL(t *testing.T) {
	t.Parallel()

	target := Target{Name: "Go", BaseURL: "http://localhost:8080/"}
	assert.Equal(t, "http://localhost:8080/io", target.URL("/io"))
	assert.Equal(t, "http://localhost:8080/heavy", target.URL("heavy"))
}

func TestTarget_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Target{Name: "Go", BaseURL: "http://localhost:8080"}.Validate())
	assert.Error(t, Target{BaseURL: "http://localhost:8080"}.Validate())
	assert.Error(t, Target{Name: "Go", BaseURL: "localhost:8080"}.Validate())
	assert.Error(t, Target{Name: "Go", BaseURL: "ftp://localhost"}.Validate())
}

func TestLoadProfile_Validate(t *testing.T) {
	t.Parallel()

	valid := LoadProfile{Concurrency: 4, Shape: ShapeCount, Requests: 10, Timeout: time.Second}
	require.NoError(t, valid.Validate())

	tests := map[string]func(p *LoadProfile){
		"zero concurrency":    func(p *LoadProfile) { p.Concurrency = 0 },
		"zero requests":       func(p *LoadProfile) { p.Requests = 0 },
		"zero duration":       func(p *LoadProfile) { p.Shape = ShapeDuration },
		"inverted think-time": func(p *LoadProfile) { p.ThinkTime = ThinkTime{Min: 2 * time.Second, Max: time.Second} },
		"negative ramp-up":    func(p *LoadProfile) { p.RampUp = -time.Second },
		"zero timeout":        func(p *LoadProfile) { p.Timeout = 0 },
		"unknown shape":       func(p *LoadProfile) { p.Shape = Shape(9) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	assert.False(t, OutcomeSuccess.IsError())
	assert.True(t, OutcomeTimeout.IsError())
	assert.Equal(t, "network_error", OutcomeNetworkError.String())
}

func TestResults_CategoryOrder(t *testing.T) {
	t.Parallel()

	results := NewResults("run", []Target{{Name: "A"}, {Name: "B"}})
	results.AddSummary(CategoryIO, "A", SummaryRecord{})
	results.AddSummary(CategoryBaseline, "A", SummaryRecord{})
	results.AddSummary(CategoryIO, "B", SummaryRecord{})
	results.AddBreakingPoint("A", BreakingPointResult{StopReason: StopSurvived})

	assert.Equal(t, []string{"A", "B"}, results.Targets)
	assert.Equal(t, []Category{CategoryIO, CategoryBaseline, CategoryBreakingPoint}, results.Categories)
	assert.Equal(t, []Category{CategoryIO, CategoryBaseline}, results.SummaryCategories())
	assert.Len(t, results.Summaries[CategoryIO], 2)
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
}
