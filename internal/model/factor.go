// Package model defines the emission-factor domain types shared across
// the import, scoring, storage and export layers.
package model

import "time"

// Category is the three-level activity classification of a factor.
type Category struct {
	L1          string `json:"level_1"`
	L2          string `json:"level_2"`
	L3          string `json:"level_3"`
	DisplayName string `json:"display_name"`
}

// Geography describes where a factor applies.
type Geography struct {
	CountryCode       string `json:"country_code"`
	Region            string `json:"region"`
	RegionDisplayName string `json:"region_display_name"`
}

// ValueInfo holds the factor value itself.
type ValueInfo struct {
	Value         float64 `json:"value"`
	Unit          Unit    `json:"unit"`
	ReferenceYear int     `json:"reference_year"`
}

// Source describes the publication a factor was taken from.
type Source struct {
	Organization    string `json:"organization"`
	Publication     string `json:"publication,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"` // YYYY-MM-DD
	URL             string `json:"url,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// QualityInfo holds the quality rating carried by a stored record.
// Score is only set when a pedigree assessment has been run.
type QualityInfo struct {
	Grade      Grade      `json:"grade"`
	Confidence Confidence `json:"confidence"`
	Score      int        `json:"score,omitempty"`
}

// EmissionFactor is a stored emission-factor record.
type EmissionFactor struct {
	ID        string      `json:"id"`
	Category  Category    `json:"category"`
	Geography Geography   `json:"geography"`
	Value     ValueInfo   `json:"value"`
	Source    Source      `json:"source"`
	Quality   QualityInfo `json:"quality"`
	Status    Status      `json:"status"`
	CreatedBy string      `json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CandidateRecord is the normalized, not-yet-validated shape of one
// import row. Numeric and date fields keep both the parsed value and the
// raw cell text; a nil parsed pointer with a non-empty raw string means
// the cell could not be coerced and is left for validation to report.
// A CandidateRecord is never mutated after normalization.
type CandidateRecord struct {
	CategoryL1       string
	CategoryL2       string
	CategoryL3       string
	DisplayNameLocal string

	CountryCode       string
	Region            string
	RegionDisplayName string

	Value    *float64
	ValueRaw string

	Unit string

	ReferenceYear    *int
	ReferenceYearRaw string

	Organization       string
	Publication        string
	PublicationDate    *time.Time
	PublicationDateRaw string
	URL                string
	Notes              string

	QualityGrade string
	Confidence   string

	CreatedBy string
}
