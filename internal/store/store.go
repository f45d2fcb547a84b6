// Package store persists emission-factor records behind a backend-
// agnostic interface with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/carbonref/factor-cli/internal/model"
)

// ErrDuplicate marks an insert that violated the natural-key uniqueness
// of a factor (category triple + country + region + unit + year).
// Callers detect it with eris.Is to report storage-level rejections.
var ErrDuplicate = eris.New("store: duplicate factor")

// ErrNotFound marks a lookup for a record that does not exist.
var ErrNotFound = eris.New("store: factor not found")

// Filter specifies criteria for listing and exporting factors.
type Filter struct {
	CategoryL1  string       `json:"category_l1,omitempty"`
	CategoryL2  string       `json:"category_l2,omitempty"`
	CountryCode string       `json:"country_code,omitempty"`
	Region      string       `json:"region,omitempty"`
	Grade       model.Grade  `json:"grade,omitempty"`
	YearFrom    int          `json:"year_from,omitempty"`
	YearTo      int          `json:"year_to,omitempty"`
	Status      model.Status `json:"status,omitempty"`
	Search      string       `json:"search,omitempty"`
	Limit       int          `json:"limit,omitempty"`
	Offset      int          `json:"offset,omitempty"`
}

// Stats aggregates published record counts for dashboards.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	ByGrade    map[string]int `json:"by_grade"`
}

// Store defines the persistence interface for the factor pipeline.
// InsertFactor is a single-statement transaction: each row is fully
// written or not written at all.
type Store interface {
	InsertFactor(ctx context.Context, rec *model.EmissionFactor) (string, error)
	GetFactor(ctx context.Context, id string) (*model.EmissionFactor, error)
	ListFactors(ctx context.Context, filter Filter) ([]model.EmissionFactor, error)
	CountFactors(ctx context.Context, filter Filter) (int, error)
	Stats(ctx context.Context) (*Stats, error)

	Migrate(ctx context.Context) error
	Close() error
}
