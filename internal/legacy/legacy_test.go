package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/numtab/internal/accessor"
	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/table"
)

func TestNumericTableBlocks(t *testing.T) {
	nt, err := New(2, 3, []float64{1, 2, 3, 4, 5, 6}, nil)
	require.NoError(t, err)
	defer nt.Release()

	block, err := nt.GetBlockOfRows(1, 2, ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5, 6}, block.Data)
	assert.Equal(t, 1, nt.PendingBlocks())
	nt.ReleaseBlockOfRows(block)
	assert.Equal(t, 0, nt.PendingBlocks())

	_, err = nt.GetBlockOfRows(2, 2, ReadOnly)
	require.ErrorIs(t, err, ErrBlockRange)

	_, err = New(2, 3, []float64{1}, nil)
	require.Error(t, err)
	_, err = Allocate[int32](0, 1)
	require.Error(t, err)
}

func TestOnFreeRunsOnce(t *testing.T) {
	calls := 0
	nt, err := New(1, 1, []int32{7}, func() { calls++ })
	require.NoError(t, err)

	nt.Retain()
	nt.Release()
	assert.Equal(t, 0, calls)
	nt.Release()
	assert.Equal(t, 1, calls)
}

func TestToLegacyCopiesAndConverts(t *testing.T) {
	h, err := table.Wrap([]float32{1, 2, 3, -1, -2, -3}, 3, 2, table.ColumnMajor)
	require.NoError(t, err)
	defer h.Release()

	nt, err := ToLegacy[float64](h)
	require.NoError(t, err)
	defer nt.Release()

	assert.Equal(t, 2, nt.Columns())
	assert.Equal(t, 3, nt.Rows())
	block, err := nt.GetBlockOfRows(0, 3, ReadOnly)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1, 2, -2, 3, -3}, block.Data)
	nt.ReleaseBlockOfRows(block)

	_, err = ToLegacy[float64](table.Empty())
	require.ErrorIs(t, err, ErrEmpty)
}

func TestToLegacyNeverAliasesTable(t *testing.T) {
	data := []int32{1, 2, 3, 4}
	h, err := table.Wrap(data, 2, 2, table.RowMajor)
	require.NoError(t, err)
	defer h.Release()

	nt, err := ToLegacy[int32](h)
	require.NoError(t, err)
	defer nt.Release()

	block, err := nt.GetBlockOfRows(0, 1, ReadWrite)
	require.NoError(t, err)
	block.Data[0] = 100
	nt.ReleaseBlockOfRows(block)
	assert.Equal(t, int32(1), data[0])
}

func TestFromArrayRequiresMutableData(t *testing.T) {
	a, err := array.FromSlice([]float32{1, 2})
	require.NoError(t, err)
	defer a.Release()
	shared := a.Clone()
	defer shared.Release()

	_, err = FromArray(a, 1, 2, false)
	require.ErrorIs(t, err, array.ErrImmutable)

	nt, err := FromArray(a, 1, 2, true)
	require.NoError(t, err)
	nt.Release()

	_, err = FromArray(&array.Array[float32]{}, 1, 1, true)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestFromArrayReleasesStorageWithLegacyTable(t *testing.T) {
	freed := 0
	a := array.Wrap([]float64{1, 2, 3}, func([]float64) { freed++ })

	nt, err := FromArray(a, 3, 1, false)
	require.NoError(t, err)
	a.Release()
	assert.Equal(t, 0, freed)

	nt.Release()
	assert.Equal(t, 1, freed)
}

func TestFromLegacyReleasesExactlyOnce(t *testing.T) {
	freed := 0
	nt, err := New(3, 2, []float32{1, 2, 3, 4, 5, 6}, func() { freed++ })
	require.NoError(t, err)

	h, err := FromLegacy(nt)
	require.NoError(t, err)
	assert.Equal(t, 1, nt.PendingBlocks())

	// Legacy side goes first: the table keeps the data alive.
	nt.Release()
	assert.Equal(t, 0, freed)

	rows, err := accessor.NewRow[float32](h).Pull(accessor.Rows(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 5, 6}, rows.Data())
	rows.Release()

	h.Release()
	assert.Equal(t, 1, freed)
	assert.Equal(t, 0, nt.PendingBlocks())
}

func TestFromLegacyTableGoesFirst(t *testing.T) {
	freed := 0
	nt, err := New(1, 2, []int64{1, 2}, func() { freed++ })
	require.NoError(t, err)

	h, err := FromLegacy(nt)
	require.NoError(t, err)
	h.Release()
	assert.Equal(t, 0, freed)
	assert.Equal(t, 0, nt.PendingBlocks())

	nt.Release()
	assert.Equal(t, 1, freed)
}

func TestFromLegacyIsReadOnly(t *testing.T) {
	nt, err := Allocate[float32](2, 2)
	require.NoError(t, err)
	defer nt.Release()

	h, err := FromLegacy(nt)
	require.NoError(t, err)
	defer h.Release()

	raw := h.Raw()
	defer raw.Release()
	assert.False(t, raw.Writable())
}
