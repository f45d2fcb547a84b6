package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonref/factor-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for
// unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithQuerier(mock), mock
}

func TestPostgresInsertFactor(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO emission_factors`).
		WithArgs(
			pgxmock.AnyArg(), // generated id
			"Energy", "Electricity", "Coal_Power",
			"CN", "North",
			"kgCO2eq/kWh", 2024, "A", "published",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := s.InsertFactor(context.Background(), testFactor())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertFactor_UniqueViolation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO emission_factors`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_factors_natural_key"})

	_, err := s.InsertFactor(context.Background(), testFactor())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetFactor(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	want := testFactor()
	want.ID = "11111111-1111-1111-1111-111111111111"
	recordJSON, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT record FROM emission_factors WHERE id = \$1`).
		WithArgs(want.ID).
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(recordJSON))

	got, err := s.GetFactor(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "Energy", got.Category.L1)
	assert.Equal(t, model.UnitKgCO2ePerKWh, got.Value.Unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetFactor_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT record FROM emission_factors WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetFactor(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListFactors(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rec1, err := json.Marshal(testFactor())
	require.NoError(t, err)
	rec2, err := json.Marshal(testFactor(func(r *model.EmissionFactor) {
		r.Value.ReferenceYear = 2023
	}))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT record FROM emission_factors WHERE 1=1 AND category_l1 = \$1 AND country_code = \$2`).
		WithArgs("Energy", "CN", 100).
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(rec1).AddRow(rec2))

	got, err := s.ListFactors(context.Background(), Filter{CategoryL1: "Energy", CountryCode: "CN"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2024, got[0].Value.ReferenceYear)
	assert.Equal(t, 2023, got[1].Value.ReferenceYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountFactors(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM emission_factors WHERE 1=1 AND grade = \$1`).
		WithArgs("B").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.CountFactors(context.Background(), Filter{Grade: model.GradeB})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS emission_factors`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
