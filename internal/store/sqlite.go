package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	sqlite "modernc.org/sqlite"

	"github.com/carbonref/factor-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS emission_factors (
	id             TEXT PRIMARY KEY,
	category_l1    TEXT NOT NULL,
	category_l2    TEXT NOT NULL,
	category_l3    TEXT NOT NULL,
	country_code   TEXT NOT NULL,
	region         TEXT NOT NULL,
	unit           TEXT NOT NULL,
	reference_year INTEGER NOT NULL,
	grade          TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'draft',
	record         TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_factors_natural_key ON emission_factors(
	category_l1, category_l2, category_l3, country_code, region, unit, reference_year
);
CREATE INDEX IF NOT EXISTS idx_factors_country ON emission_factors(country_code);
CREATE INDEX IF NOT EXISTS idx_factors_grade ON emission_factors(grade);
CREATE INDEX IF NOT EXISTS idx_factors_status ON emission_factors(status);
CREATE INDEX IF NOT EXISTS idx_factors_year ON emission_factors(reference_year);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertFactor(ctx context.Context, rec *model.EmissionFactor) (string, error) {
	stored := *rec
	stored.ID = uuid.New().String()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Status == "" {
		stored.Status = model.StatusDraft
	}

	recordJSON, err := json.Marshal(&stored)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal factor")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO emission_factors (
			id, category_l1, category_l2, category_l3, country_code, region,
			unit, reference_year, grade, status, record, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.Category.L1, stored.Category.L2, stored.Category.L3,
		stored.Geography.CountryCode, stored.Geography.Region,
		string(stored.Value.Unit), stored.Value.ReferenceYear,
		string(stored.Quality.Grade), string(stored.Status),
		string(recordJSON), now, now,
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return "", eris.Wrap(ErrDuplicate, naturalKey(&stored))
		}
		return "", eris.Wrap(err, "sqlite: insert factor")
	}
	return stored.ID, nil
}

func (s *SQLiteStore) GetFactor(ctx context.Context, id string) (*model.EmissionFactor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM emission_factors WHERE id = ?`, id,
	)

	var recordJSON string
	err := row.Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get factor")
	}
	return unmarshalFactor(recordJSON)
}

func (s *SQLiteStore) ListFactors(ctx context.Context, filter Filter) ([]model.EmissionFactor, error) {
	query := `SELECT record FROM emission_factors` + sqliteWhere(filter) + ` ORDER BY updated_at DESC, id`
	args := sqliteArgs(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list factors")
	}
	defer rows.Close()

	var factors []model.EmissionFactor
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan factor")
		}
		rec, err := unmarshalFactor(recordJSON)
		if err != nil {
			return nil, err
		}
		factors = append(factors, *rec)
	}
	return factors, eris.Wrap(rows.Err(), "sqlite: list factors iterate")
}

func (s *SQLiteStore) CountFactors(ctx context.Context, filter Filter) (int, error) {
	query := `SELECT COUNT(*) FROM emission_factors` + sqliteWhere(filter)

	var n int
	if err := s.db.QueryRowContext(ctx, query, sqliteArgs(filter)...).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count factors")
	}
	return n, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByCategory: map[string]int{},
		ByGrade:    map[string]int{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM emission_factors WHERE status = ?`,
		string(model.StatusPublished),
	).Scan(&stats.Total)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats total")
	}

	if err := s.groupCount(ctx, "category_l1", stats.ByCategory); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, "grade", stats.ByGrade); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SQLiteStore) groupCount(ctx context.Context, column string, dest map[string]int) error {
	// column is one of two fixed identifiers, never user input.
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM emission_factors WHERE status = ? GROUP BY `+column,
		string(model.StatusPublished),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: stats by %s", column)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return eris.Wrapf(err, "sqlite: scan stats by %s", column)
		}
		dest[key] = n
	}
	return eris.Wrapf(rows.Err(), "sqlite: stats by %s iterate", column)
}

// helpers

func sqliteWhere(filter Filter) string {
	clause := ` WHERE 1=1`
	if filter.CategoryL1 != "" {
		clause += ` AND category_l1 = ?`
	}
	if filter.CategoryL2 != "" {
		clause += ` AND category_l2 = ?`
	}
	if filter.CountryCode != "" {
		clause += ` AND country_code = ?`
	}
	if filter.Region != "" {
		clause += ` AND region = ?`
	}
	if filter.Grade != "" {
		clause += ` AND grade = ?`
	}
	if filter.YearFrom > 0 {
		clause += ` AND reference_year >= ?`
	}
	if filter.YearTo > 0 {
		clause += ` AND reference_year <= ?`
	}
	if filter.Status != "" {
		clause += ` AND status = ?`
	}
	if filter.Search != "" {
		clause += ` AND (json_extract(record, '$.category.display_name') LIKE ?
			OR json_extract(record, '$.geography.region_display_name') LIKE ?
			OR json_extract(record, '$.source.organization') LIKE ?)`
	}
	return clause
}

func sqliteArgs(filter Filter) []any {
	var args []any
	if filter.CategoryL1 != "" {
		args = append(args, filter.CategoryL1)
	}
	if filter.CategoryL2 != "" {
		args = append(args, filter.CategoryL2)
	}
	if filter.CountryCode != "" {
		args = append(args, filter.CountryCode)
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
	}
	if filter.Grade != "" {
		args = append(args, string(filter.Grade))
	}
	if filter.YearFrom > 0 {
		args = append(args, filter.YearFrom)
	}
	if filter.YearTo > 0 {
		args = append(args, filter.YearTo)
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	return args
}

func unmarshalFactor(recordJSON string) (*model.EmissionFactor, error) {
	var rec model.EmissionFactor
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal factor")
	}
	return &rec, nil
}

// SQLite extended result codes for unique and primary-key violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isSQLiteConstraint(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqliteConstraintUnique || serr.Code() == sqliteConstraintPrimaryKey
}

func naturalKey(rec *model.EmissionFactor) string {
	return rec.Category.L1 + "/" + rec.Category.L2 + "/" + rec.Category.L3 +
		" " + rec.Geography.CountryCode + "/" + rec.Geography.Region
}
