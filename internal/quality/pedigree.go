package quality

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/carbonref/factor-cli/internal/model"
)

// ErrScoreOutOfRange marks a factor score outside [1,5]. Callers can
// detect it with eris.Is.
var ErrScoreOutOfRange = eris.New("quality: factor score out of range")

// gradeBand maps a contiguous overall-score range to a grade. Bands are
// evaluated high to low; together they cover [0,100] exactly.
type gradeBand struct {
	grade model.Grade
	min   int
	max   int
}

var gradeBands = []gradeBand{
	{model.GradeA, 90, 100},
	{model.GradeB, 75, 89},
	{model.GradeC, 60, 74},
	{model.GradeD, 40, 59},
	{model.GradeF, 0, 39},
}

// GradeFor returns the grade band containing the given overall score.
func GradeFor(overall int) model.Grade {
	for _, b := range gradeBands {
		if overall >= b.min && overall <= b.max {
			return b.grade
		}
	}
	// Unreachable for scores in [0,100]; bands are contiguous.
	return model.GradeF
}

// Engine computes pedigree-matrix assessments with an injected weighting
// scheme. Score is a pure function: identical inputs always yield
// identical assessments.
type Engine struct {
	cfg Config
}

// NewEngine validates the weighting scheme and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Score combines the five raw 1-5 ratings into an Assessment. Any score
// outside [1,5] fails the whole call with ErrScoreOutOfRange.
func (e *Engine) Score(in model.QualityInput) (*model.Assessment, error) {
	raw := map[string]int{
		FactorTemporal:      in.Temporal,
		FactorGeographical:  in.Geographical,
		FactorTechnological: in.Technological,
		FactorCompleteness:  in.Completeness,
		FactorReliability:   in.Reliability,
	}

	factors := make([]model.FactorScore, 0, len(e.cfg.Weights))
	var weightedSum float64

	for _, w := range e.cfg.Weights {
		score := raw[w.Name]
		if score < 1 || score > 5 {
			return nil, eris.Wrapf(ErrScoreOutOfRange, "%s: got %d, want 1-5", w.Name, score)
		}

		contribution := float64(score) * w.Weight
		weightedSum += contribution

		factors = append(factors, model.FactorScore{
			Factor:       w.Name,
			Score:        score,
			Weight:       w.Weight,
			Contribution: contribution,
			Band:         bandFor(score),
		})
	}

	overall := int(math.Round(weightedSum * 20))
	grade := GradeFor(overall)
	confidence := clamp(float64(overall)*0.8+20, 50, 95)

	var recommendations []string
	for _, f := range factors {
		if f.Score < 3 {
			recommendations = append(recommendations,
				fmt.Sprintf("improve %s: current score %d is below acceptable", f.Factor, f.Score))
		}
	}
	if overall < 60 {
		recommendations = append(recommendations,
			"overall data quality is low: seek a higher-quality source")
	}

	return &model.Assessment{
		Factors:         factors,
		OverallScore:    overall,
		Grade:           grade,
		ConfidenceLevel: confidence,
		Recommendations: recommendations,
	}, nil
}

// bandFor labels a single 1-5 factor score.
func bandFor(score int) model.FactorBand {
	switch {
	case score >= 5:
		return model.BandExcellent
	case score >= 4:
		return model.BandGood
	case score >= 3:
		return model.BandFair
	case score >= 2:
		return model.BandPoor
	default:
		return model.BandVeryPoor
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
