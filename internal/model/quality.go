package model

// QualityInput holds the five raw pedigree-matrix scores, each 1-5.
type QualityInput struct {
	Temporal      int `json:"temporal_representativeness"`
	Geographical  int `json:"geographical_representativeness"`
	Technological int `json:"technological_representativeness"`
	Completeness  int `json:"completeness"`
	Reliability   int `json:"reliability"`
}

// FactorBand labels a single factor score.
type FactorBand string

const (
	BandExcellent FactorBand = "excellent"
	BandGood      FactorBand = "good"
	BandFair      FactorBand = "fair"
	BandPoor      FactorBand = "poor"
	BandVeryPoor  FactorBand = "very_poor"
)

// FactorScore is one factor's contribution to the overall assessment.
type FactorScore struct {
	Factor       string     `json:"factor"`
	Score        int        `json:"score"`
	Weight       float64    `json:"weight"`
	Contribution float64    `json:"contribution"`
	Band         FactorBand `json:"band"`
}

// Assessment is the derived pedigree-matrix result. It is computed on
// demand and never persisted as its own entity; only OverallScore and
// Grade are written back onto the owning record.
type Assessment struct {
	Factors         []FactorScore `json:"factors"`
	OverallScore    int           `json:"overall_score"`
	Grade           Grade         `json:"grade"`
	ConfidenceLevel float64       `json:"confidence_level"`
	Recommendations []string      `json:"recommendations,omitempty"`
}
