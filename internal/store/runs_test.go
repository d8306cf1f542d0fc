package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqlconn/internal/connector"
)

func testRun(id string, startedAt time.Time) connector.Run {
	return connector.Run{
		ID:        id,
		StartedAt: startedAt,
		Endpoint:  "https://example.org/sparql",
		QueryHash: "abc123",
		Status:    connector.RunStatusSuccess,
		RowCount:  3,
		Duration:  1500 * time.Millisecond,
	}
}

func TestRecordRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, 6, 15, 12, 0, 0, 123456789, time.UTC)
	run := testRun("run-1", started)
	require.NoError(t, s.RecordRun(ctx, run))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])
}

func TestRecordRun_ErrorRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("run-err", time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	run.Status = connector.RunStatusError
	run.ErrorCode = "ENDPOINT_UNREACHABLE"
	run.RowCount = 0
	require.NoError(t, s.RecordRun(ctx, run))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, connector.RunStatusError, runs[0].Status)
	assert.Equal(t, "ENDPOINT_UNREACHABLE", runs[0].ErrorCode)
}

func TestRecordRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.RecordRun(ctx, run))

	run.RowCount = 99
	require.NoError(t, s.RecordRun(ctx, run))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].RowCount, "first write wins")
}

func TestRecordRun_RejectsUnknownStatus(t *testing.T) {
	s := createTestStore(t)

	run := testRun("run-1", time.Now())
	run.Status = "pending"
	assert.Error(t, s.RecordRun(context.Background(), run))
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordRun(ctx, testRun("b", base.Add(time.Second))))
	require.NoError(t, s.RecordRun(ctx, testRun("a", base)))
	require.NoError(t, s.RecordRun(ctx, testRun("c", base.Add(1500*time.Millisecond))))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestListRuns_Limit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3", "r4"} {
		require.NoError(t, s.RecordRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r4", runs[0].ID)
	assert.Equal(t, "r3", runs[1].ID)
}

func TestListRuns_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestStore_AsConnectorRecorder(t *testing.T) {
	s := createTestStore(t)

	var rec connector.Recorder = s
	require.NoError(t, rec.RecordRun(context.Background(), testRun("via-iface", time.Now())))

	runs, err := s.ListRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "via-iface", runs[0].ID)
}
