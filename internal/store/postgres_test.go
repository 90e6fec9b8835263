package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "place-1", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.Lead{Name: "Lakeside Dental", PlaceID: "place-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	leadJSON, err := json.Marshal(model.Lead{Name: "Lakeside Dental"})
	require.NoError(t, err)
	decisionJSON, err := json.Marshal(testDecision(model.BottleneckTrust, 48))
	require.NoError(t, err)
	dj := []byte(decisionJSON)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, lead, status, decision, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead", "status", "decision", "error", "created_at", "updated_at"}).
			AddRow("run-1", []byte(leadJSON), model.RunStatusComplete, &dj, "", now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "Lakeside Dental", run.Lead.Name)
	require.NotNil(t, run.Decision)
	assert.Equal(t, model.BottleneckTrust, run.Decision.RootBottleneck.Bottleneck)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, lead, status, decision, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead", "status", "decision", "error", "created_at", "updated_at"}))

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET decision = \$1, status = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", testDecision(model.BottleneckDemand, 50))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET decision`).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "ghost", testDecision(model.BottleneckDemand, 50))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, error = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs("failed", "crawl timed out", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FailRun(context.Background(), "run-1", "crawl timed out")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_StatusFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	leadJSON, err := json.Marshal(model.Lead{Name: "A", PlaceID: "pa"})
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, lead, status, decision, error, created_at, updated_at FROM runs WHERE true AND status = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("queued", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead", "status", "decision", "error", "created_at", "updated_at"}).
			AddRow("run-1", []byte(leadJSON), model.RunStatusQueued, (*[]byte)(nil), "", now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusQueued})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "A", runs[0].Lead.Name)
	assert.Nil(t, runs[0].Decision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestDecisions(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	leadJSON, err := json.Marshal(model.Lead{Name: "A", PlaceID: "pa"})
	require.NoError(t, err)
	decisionJSON, err := json.Marshal(testDecision(model.BottleneckVisibility, 62))
	require.NoError(t, err)
	dj := []byte(decisionJSON)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT DISTINCT ON \(lead_key\)`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead", "status", "decision", "error", "created_at", "updated_at"}).
			AddRow("run-2", []byte(leadJSON), model.RunStatusComplete, &dj, "", now, now))

	runs, err := s.LatestDecisions(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.BottleneckVisibility, runs[0].Decision.RootBottleneck.Bottleneck)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
