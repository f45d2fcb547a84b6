package quality

import (
	"os"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonref/factor-cli/internal/model"
)

func allScores(n int) model.QualityInput {
	return model.QualityInput{
		Temporal:      n,
		Geographical:  n,
		Technological: n,
		Completeness:  n,
		Reliability:   n,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestScoreAllFives(t *testing.T) {
	e := newTestEngine(t)

	a, err := e.Score(allScores(5))
	require.NoError(t, err)

	assert.Equal(t, 100, a.OverallScore)
	assert.Equal(t, model.GradeA, a.Grade)
	assert.InDelta(t, 95.0, a.ConfidenceLevel, 0.001)
	assert.Empty(t, a.Recommendations)
}

func TestScoreAllOnes(t *testing.T) {
	e := newTestEngine(t)

	a, err := e.Score(allScores(1))
	require.NoError(t, err)

	assert.Equal(t, 20, a.OverallScore)
	assert.Equal(t, model.GradeF, a.Grade)
	assert.InDelta(t, 50.0, a.ConfidenceLevel, 0.001) // clamped floor

	// All five factors are below 3, plus the general low-quality note.
	assert.Len(t, a.Recommendations, 6)
}

func TestScoreMixed(t *testing.T) {
	e := newTestEngine(t)

	a, err := e.Score(model.QualityInput{
		Temporal:      4,
		Geographical:  3,
		Technological: 5,
		Completeness:  4,
		Reliability:   2,
	})
	require.NoError(t, err)

	// 4*0.25 + 3*0.25 + 5*0.25 + 4*0.15 + 2*0.10 = 3.80 → 76
	assert.Equal(t, 76, a.OverallScore)
	assert.Equal(t, model.GradeB, a.Grade)
	assert.InDelta(t, 80.8, a.ConfidenceLevel, 0.001)

	// Only reliability (2) is below 3 and overall is >= 60.
	require.Len(t, a.Recommendations, 1)
	assert.Contains(t, a.Recommendations[0], FactorReliability)
}

func TestScoreOutOfRange(t *testing.T) {
	e := newTestEngine(t)

	for _, bad := range []int{0, 6, -1} {
		in := allScores(3)
		in.Completeness = bad
		_, err := e.Score(in)
		require.Error(t, err)
		assert.True(t, eris.Is(err, ErrScoreOutOfRange))
	}
}

func TestScoreDeterministic(t *testing.T) {
	e := newTestEngine(t)
	in := model.QualityInput{Temporal: 2, Geographical: 4, Technological: 3, Completeness: 5, Reliability: 1}

	a1, err := e.Score(in)
	require.NoError(t, err)
	a2, err := e.Score(in)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
}

func TestScoreMonotonic(t *testing.T) {
	e := newTestEngine(t)

	// Raising any single factor never lowers the overall score.
	base := allScores(3)
	baseline, err := e.Score(base)
	require.NoError(t, err)

	bump := []model.QualityInput{
		{Temporal: 4, Geographical: 3, Technological: 3, Completeness: 3, Reliability: 3},
		{Temporal: 3, Geographical: 4, Technological: 3, Completeness: 3, Reliability: 3},
		{Temporal: 3, Geographical: 3, Technological: 4, Completeness: 3, Reliability: 3},
		{Temporal: 3, Geographical: 3, Technological: 3, Completeness: 4, Reliability: 3},
		{Temporal: 3, Geographical: 3, Technological: 3, Completeness: 3, Reliability: 4},
	}
	for _, in := range bump {
		a, err := e.Score(in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, a.OverallScore, baseline.OverallScore)
	}
}

func TestGradeBandTotality(t *testing.T) {
	// Every integer in [0,100] maps to exactly one band.
	for score := 0; score <= 100; score++ {
		matches := 0
		for _, b := range gradeBands {
			if score >= b.min && score <= b.max {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "score %d", score)
	}

	assert.Equal(t, model.GradeA, GradeFor(90))
	assert.Equal(t, model.GradeB, GradeFor(89))
	assert.Equal(t, model.GradeB, GradeFor(75))
	assert.Equal(t, model.GradeC, GradeFor(74))
	assert.Equal(t, model.GradeD, GradeFor(59))
	assert.Equal(t, model.GradeD, GradeFor(40))
	assert.Equal(t, model.GradeF, GradeFor(39))
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score int
		want  model.FactorBand
	}{
		{5, model.BandExcellent},
		{4, model.BandGood},
		{3, model.BandFair},
		{2, model.BandPoor},
		{1, model.BandVeryPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bandFor(tt.score))
	}
}

func TestFactorContributions(t *testing.T) {
	e := newTestEngine(t)

	a, err := e.Score(allScores(4))
	require.NoError(t, err)

	require.Len(t, a.Factors, 5)
	var sum float64
	for _, f := range a.Factors {
		assert.InDelta(t, float64(f.Score)*f.Weight, f.Contribution, 0.0001)
		sum += f.Contribution
	}
	assert.InDelta(t, 4.0, sum, 0.0001)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default ok", func(*Config) {}, ""},
		{"negative weight", func(c *Config) { c.Weights[0].Weight = -0.25 }, "must be >= 0"},
		{"bad sum", func(c *Config) { c.Weights[0].Weight = 0.5 }, "sum to 1.0"},
		{"missing factor", func(c *Config) { c.Weights = c.Weights[:4] }, "missing factor"},
		{"unknown factor", func(c *Config) { c.Weights[4].Name = "vibes" }, "unknown factor"},
		{"duplicate factor", func(c *Config) { c.Weights[4].Name = FactorTemporal }, "duplicate factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := t.TempDir() + "/weights.yaml"
	data := `weights:
  - name: temporal_representativeness
    weight: 0.30
  - name: geographical_representativeness
    weight: 0.30
  - name: technological_representativeness
    weight: 0.20
  - name: completeness
    weight: 0.10
  - name: reliability
    weight: 0.10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, WeightSum(cfg), 0.001)
	assert.InDelta(t, 0.30, cfg.Weights[0].Weight, 0.001)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir() + "/nope.yaml")
	assert.Error(t, err)
}
