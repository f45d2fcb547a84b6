package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/carbonref/factor-cli/internal/model"
)

// Querier is the subset of pgxpool.Pool the store uses. pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Querier
	closeFn func()
}

// preparedStatements lists queries prepared on each new connection for
// the hot paths of the import and export flows.
var preparedStatements = map[string]string{
	"insert_factor": `INSERT INTO emission_factors (
		id, category_l1, category_l2, category_l3, country_code, region,
		unit, reference_year, grade, status, record, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
	"get_factor": `SELECT record FROM emission_factors WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, maxConns, minConns int32) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	if minConns <= 0 {
		minConns = 2
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: new pool")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithQuerier wires an existing querier, used by tests.
func NewPostgresWithQuerier(q Querier) *PostgresStore {
	return &PostgresStore{pool: q}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS emission_factors (
	id             UUID PRIMARY KEY,
	category_l1    TEXT NOT NULL,
	category_l2    TEXT NOT NULL,
	category_l3    TEXT NOT NULL,
	country_code   TEXT NOT NULL,
	region         TEXT NOT NULL,
	unit           TEXT NOT NULL,
	reference_year INTEGER NOT NULL,
	grade          TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'draft',
	record         JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_factors_natural_key ON emission_factors(
	category_l1, category_l2, category_l3, country_code, region, unit, reference_year
);
CREATE INDEX IF NOT EXISTS idx_factors_country ON emission_factors(country_code);
CREATE INDEX IF NOT EXISTS idx_factors_grade ON emission_factors(grade);
CREATE INDEX IF NOT EXISTS idx_factors_status ON emission_factors(status);
CREATE INDEX IF NOT EXISTS idx_factors_year ON emission_factors(reference_year);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertFactor(ctx context.Context, rec *model.EmissionFactor) (string, error) {
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
		return "", eris.Wrap(err, "postgres: marshal factor")
	}

	_, err = s.pool.Exec(ctx, preparedStatements["insert_factor"],
		stored.ID,
		stored.Category.L1, stored.Category.L2, stored.Category.L3,
		stored.Geography.CountryCode, stored.Geography.Region,
		string(stored.Value.Unit), stored.Value.ReferenceYear,
		string(stored.Quality.Grade), string(stored.Status),
		recordJSON, now, now,
	)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return "", eris.Wrap(ErrDuplicate, naturalKey(&stored))
		}
		return "", eris.Wrap(err, "postgres: insert factor")
	}
	return stored.ID, nil
}

func (s *PostgresStore) GetFactor(ctx context.Context, id string) (*model.EmissionFactor, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx, preparedStatements["get_factor"], id).Scan(&recordJSON)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get factor")
	}
	return unmarshalFactor(string(recordJSON))
}

func (s *PostgresStore) ListFactors(ctx context.Context, filter Filter) ([]model.EmissionFactor, error) {
	query, args := postgresWhere(`SELECT record FROM emission_factors`, filter)
	query += ` ORDER BY updated_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list factors")
	}
	defer rows.Close()

	var factors []model.EmissionFactor
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan factor")
		}
		rec, err := unmarshalFactor(string(recordJSON))
		if err != nil {
			return nil, err
		}
		factors = append(factors, *rec)
	}
	return factors, eris.Wrap(rows.Err(), "postgres: list factors iterate")
}

func (s *PostgresStore) CountFactors(ctx context.Context, filter Filter) (int, error) {
	query, args := postgresWhere(`SELECT COUNT(*) FROM emission_factors`, filter)

	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count factors")
	}
	return n, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByCategory: map[string]int{},
		ByGrade:    map[string]int{},
	}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM emission_factors WHERE status = $1`,
		string(model.StatusPublished),
	).Scan(&stats.Total)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats total")
	}

	for _, group := range []struct {
		column string
		dest   map[string]int
	}{
		{"category_l1", stats.ByCategory},
		{"grade", stats.ByGrade},
	} {
		column, dest := group.column, group.dest
		rows, err := s.pool.Query(ctx,
			`SELECT `+column+`, COUNT(*) FROM emission_factors WHERE status = $1 GROUP BY `+column,
			string(model.StatusPublished),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: stats by %s", column)
		}
		for rows.Next() {
			var key string
			var n int
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return nil, eris.Wrapf(err, "postgres: scan stats by %s", column)
			}
			dest[key] = n
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, eris.Wrapf(err, "postgres: stats by %s iterate", column)
		}
	}
	return stats, nil
}

// postgresWhere builds the WHERE clause with positional parameters.
func postgresWhere(base string, filter Filter) (string, []any) {
	query := base + ` WHERE 1=1`
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.CategoryL1 != "" {
		add(` AND category_l1 = $%d`, filter.CategoryL1)
	}
	if filter.CategoryL2 != "" {
		add(` AND category_l2 = $%d`, filter.CategoryL2)
	}
	if filter.CountryCode != "" {
		add(` AND country_code = $%d`, filter.CountryCode)
	}
	if filter.Region != "" {
		add(` AND region = $%d`, filter.Region)
	}
	if filter.Grade != "" {
		add(` AND grade = $%d`, string(filter.Grade))
	}
	if filter.YearFrom > 0 {
		add(` AND reference_year >= $%d`, filter.YearFrom)
	}
	if filter.YearTo > 0 {
		add(` AND reference_year <= $%d`, filter.YearTo)
	}
	if filter.Status != "" {
		add(` AND status = $%d`, string(filter.Status))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (record->'category'->>'display_name' ILIKE $%d
			OR record->'geography'->>'region_display_name' ILIKE $%d
			OR record->'source'->>'organization' ILIKE $%d)`, n, n, n)
	}
	return query, args
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
