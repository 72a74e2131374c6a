package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func qsortMiss(dtype entities.DType) entities.Descriptor {
	return entities.Descriptor{
		Version:  entities.DescriptorVersion,
		Function: "qsort_kernel",
		Args: []entities.ArgDescriptor{
			{Name: "a", Kind: entities.KindArray, DType: dtype, Rank: 1, Shape: []int{5}},
			{Name: "lo", Kind: entities.KindInt, DType: entities.Int64},
			{Name: "hi", Kind: entities.KindInt, DType: entities.Int64},
		},
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)

	var mode string
	require.NoError(t, j.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, j.Close())
	}
}

func TestJournal_Record(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j.now = func() time.Time { return clock }

	require.NoError(t, j.Record(ctx, qsortMiss(entities.Int32), []byte(`{"v":1}`)))
	clock = clock.Add(time.Minute)
	require.NoError(t, j.Record(ctx, qsortMiss(entities.Int32), []byte(`{"v":2}`)))
	require.NoError(t, j.Record(ctx, qsortMiss(entities.Float32), []byte(`{"v":3}`)))

	entries, err := j.List(ctx, "qsort_kernel")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "qsort_kernel_i1JJ", first.Signature)
	assert.Equal(t, 2, first.Hits)
	assert.Equal(t, []byte(`{"v":2}`), first.Descriptor)
	assert.Equal(t, entities.SpecializationID("qsort_kernel_i1JJ"), first.SpecID)
	assert.True(t, first.LastSeen.After(first.FirstSeen))

	assert.Equal(t, "qsort_kernel_f1JJ", entries[1].Signature)
	assert.Equal(t, 1, entries[1].Hits)
}

func TestJournal_ListFilters(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, qsortMiss(entities.Int32), []byte("{}")))
	require.NoError(t, j.Record(ctx, entities.Descriptor{
		Version:  1,
		Function: "fib",
		Args:     []entities.ArgDescriptor{{Name: "n", Kind: entities.KindFloat, DType: entities.Float64}},
	}, []byte("{}")))

	all, err := j.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fib, err := j.List(ctx, "fib")
	require.NoError(t, err)
	require.Len(t, fib, 1)
	assert.Equal(t, "fib_d", fib[0].Signature)

	none, err := j.List(ctx, "pisum")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournal_CloseTwice(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, j.Close())
	assert.NoError(t, (&Journal{}).Close())
}
