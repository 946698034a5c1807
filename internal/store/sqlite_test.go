package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricing-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleRequest(centreID string) model.FillRequest {
	return model.FillRequest{
		CentreID:  centreID,
		Address:   "1 Main St, New York",
		Currency:  "USD",
		AreaUnits: model.AreaSqFt,
		TotalArea: 10000,
	}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, sampleRequest("US001"))
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "US001", got.Request.CentreID)
	assert.Equal(t, "1 Main St, New York", got.Request.Address)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, sampleRequest("US001"))
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusComps))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComps, got.Status)
}

func TestSQLite_UpdateRunStatus_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "no-such-run", model.RunStatusComps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, sampleRequest("US001"))
	require.NoError(t, err)

	result := &model.FillResult{
		OutputPath:    "/tmp/pricing-US001.xlsx",
		CompIDs:       []string{"US002", "US003"},
		CompDistances: []string{"1.5 mi", "2.0 mi"},
		AveragePrice:  105.5,
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, model.RunStatusComplete, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, result.CompIDs, got.Result.CompIDs)
	assert.Equal(t, 105.5, got.Result.AveragePrice)
}

func TestSQLite_UpdateRunResult_FailedKeepsError(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, sampleRequest("US001"))
	require.NoError(t, err)

	result := &model.FillResult{Error: "geocode: address not found"}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, model.RunStatusFailed, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "geocode: address not found", got.Result.Error)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, id := range []string{"US001", "US001", "CA001"} {
		_, err := st.CreateRun(ctx, sampleRequest(id))
		require.NoError(t, err)
	}

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCentre, err := st.ListRuns(ctx, RunFilter{CentreID: "US001"})
	require.NoError(t, err)
	assert.Len(t, byCentre, 2)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	offset, err := st.ListRuns(ctx, RunFilter{Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, offset, 1)
}

func TestSQLite_ListRuns_StatusFilterExcludes(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, sampleRequest("US001"))
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete))

	queued, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusQueued})
	require.NoError(t, err)
	assert.Empty(t, queued)
}
