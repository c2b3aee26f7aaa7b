package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderanalyzer/schema"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := NewRunStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := schema.Normalize(schema.Record{
		"title":    "Поставка свай винтовых",
		"customer": schema.Record{"name": "ООО Ромашка", "inn": "1234567890"},
	})

	id, err := store.SaveRun(ctx, record, "Казань", []string{"tz.txt", "contract.txt"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := store.GetRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, run.ID)
	assert.Equal(t, "Казань", run.City)
	assert.Equal(t, "Поставка свай винтовых", run.Title)
	assert.Equal(t, []string{"tz.txt", "contract.txt"}, run.Sources)
	assert.WithinDuration(t, time.Now().UTC(), run.CreatedAt, time.Minute)

	cust := run.Record["customer"].(map[string]any)
	assert.Equal(t, "1234567890", cust["inn"])
}

func TestGetRunNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"Первый", "Второй", "Третий"} {
		record := schema.Normalize(schema.Record{"title": title})
		_, err := store.SaveRun(ctx, record, "Москва", []string{"text"})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond) // разводим created_at
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// новые первыми, тела карточек не грузятся
	assert.Equal(t, "Третий", runs[0].Title)
	assert.Equal(t, "Второй", runs[1].Title)
	assert.Nil(t, runs[0].Record)

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
