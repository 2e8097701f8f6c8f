package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
)

func sampleReport(id string, startedAt time.Time) domain.BatchReport {
	items := []domain.ReportItem{
		{
			Item: domain.WorkItem{Index: 0, InputPath: "a.pdf", OutputPath: "out/a.pdf",
				Params: domain.OptimizeParams{Type: "standard", DPI: 150, Quality: 85}},
			Result: domain.Success("out/a.pdf", 2*time.Second, domain.ResultDetails{InputBytes: 2048, OutputBytes: 1024}),
		},
		{
			Item: domain.WorkItem{Index: 1, InputPath: "b.pdf", OutputPath: "out/b.pdf",
				Params: domain.OptimizeParams{Type: "standard", DPI: 150, Quality: 85}},
			Result: domain.Failure(domain.OperationFailed("b.pdf is not a PDF document", "Check the file"), time.Second),
		},
	}
	return domain.NewBatchReport(id, domain.OperationOptimize, startedAt, 3*time.Second, items, false)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := sampleReport("run-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, domain.OperationOptimize, got.Operation)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Items, 2)
	assert.Equal(t, report.Items[0].Item, got.Items[0].Item)
	assert.Equal(t, "out/a.pdf", got.Items[0].Result.OutputPath)
	assert.Equal(t, domain.KindOperationFailed, got.Items[1].Result.Err.Kind)
	assert.Equal(t, []string{"Check the file"}, got.Items[1].Result.Err.Suggestions)
}

func TestStore_SaveReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.NewBatchReport("run-1", domain.OperationOCR, started, 0, nil, true)))
	require.NoError(t, store.Save(ctx, sampleReport("run-1", started)))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Total)
	assert.False(t, list[0].Interrupted)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "newest", "middle"} {
		offset := map[int]time.Duration{0: 0, 1: 2 * time.Hour, 2: time.Hour}[i]
		require.NoError(t, store.Save(ctx, sampleReport(id, base.Add(offset))))
	}

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"newest", "middle", "old"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 3*time.Second, list[0].Elapsed)
	assert.True(t, list[0].StartedAt.Equal(base.Add(2*time.Hour)))

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_GetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpen_InvalidDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x", nil)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorTypeConfig, domainErr.Type)

	_, err = Open(context.Background(), "sqlite", "", nil)
	require.Error(t, err)
}

func TestCalculateBackoff(t *testing.T) {
	config := RetryConfig{MaxRetries: 5, InitialBackoff: 100 * time.Millisecond, MaxBackoff: 500 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, calculateBackoff(0, config))
	assert.Equal(t, 200*time.Millisecond, calculateBackoff(1, config))
	assert.Equal(t, 400*time.Millisecond, calculateBackoff(2, config))
	assert.Equal(t, 500*time.Millisecond, calculateBackoff(3, config))
}

func TestWithRetry(t *testing.T) {
	config := RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	calls := 0
	err := withRetry(context.Background(), config, nil, func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = withRetry(context.Background(), config, nil, func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "connection refused")
}
