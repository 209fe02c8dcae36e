package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/numtab/internal/array"
)

func TestBuildFootprintMatchesBuffer(t *testing.T) {
	for _, layout := range []Layout{RowMajor, ColumnMajor} {
		for rows := 1; rows <= 5; rows++ {
			for cols := 1; cols <= 5; cols++ {
				a, err := array.Zeros[float64](rows * cols)
				require.NoError(t, err)

				h, err := FromArray(a, rows, cols, layout)
				require.NoError(t, err)
				assert.Equal(t, KindHomogen, h.Kind())
				assert.Equal(t, a.ByteSize(), h.RowCount()*h.ColumnCount()*h.DataType().Size())

				h.Release()
				a.Release()
			}
		}
	}
}

func TestBuilderErrors(t *testing.T) {
	a, err := array.Zeros[int32](6)
	require.NoError(t, err)
	defer a.Release()

	var b Builder
	defer b.Release()

	var dimErr *DimensionError
	require.ErrorAs(t, b.Reset(a, 0, 3, RowMajor), &dimErr)
	require.ErrorAs(t, b.Reset(a, 2, -1, RowMajor), &dimErr)

	var sizeErr *SizeMismatchError
	require.ErrorAs(t, b.Reset(a, 3, 3, RowMajor), &sizeErr)
	assert.Equal(t, 6, sizeErr.Have)
	assert.Equal(t, 9, sizeErr.Want)

	assert.Equal(t, KindEmpty, b.Build().Kind())
}

func TestBuilderIsReusable(t *testing.T) {
	a, err := array.FromSlice([]float32{1, 2, 3, 4})
	require.NoError(t, err)
	defer a.Release()
	c, err := array.FromSlice([]float32{5, 6, 7, 8, 9, 10})
	require.NoError(t, err)
	defer c.Release()

	b := NewBuilder()
	defer b.Release()

	require.NoError(t, b.Reset(a, 2, 2, RowMajor))
	first := b.Build()
	defer first.Release()

	require.NoError(t, b.Reset(c, 3, 2, ColumnMajor))
	second := b.Build()
	defer second.Release()

	assert.Equal(t, []float32{1, 2, 3, 4}, DataAs[float32](first))
	assert.Equal(t, 3, second.RowCount())
	assert.Equal(t, ColumnMajor, second.Layout())
	assert.Equal(t, []float32{5, 6, 7, 8, 9, 10}, DataAs[float32](second))
}

func TestTableSharesBuffer(t *testing.T) {
	a, err := array.FromSlice([]int64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	h, err := FromArray(a, 2, 3, RowMajor)
	require.NoError(t, err)
	assert.Same(t, &a.Data()[0], &DataAs[int64](h)[0])

	raw := h.Raw()
	assert.Equal(t, 48, raw.Count())
	raw.Release()

	a.Release()
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, DataAs[int64](h))
	h.Release()
}

func TestWrapBorrowsData(t *testing.T) {
	data := []uint8{1, 2, 3, 4, 5, 6}
	h, err := Wrap(data, 3, 2, RowMajor)
	require.NoError(t, err)
	defer h.Release()

	assert.Equal(t, array.Uint8, h.DataType())
	assert.Equal(t, data, h.Data())
}

func TestHomogenTranspose(t *testing.T) {
	h, err := Wrap([]float64{1, 2, 3, 4, 5, 6}, 2, 3, RowMajor)
	require.NoError(t, err)
	defer h.Release()

	tr := h.Transpose()
	defer tr.Release()
	assert.Equal(t, 3, tr.RowCount())
	assert.Equal(t, 2, tr.ColumnCount())
	assert.Equal(t, ColumnMajor, tr.Layout())
	assert.Equal(t, 2, tr.Metadata().ColumnCount())
	assert.Same(t, &h.Data()[0], &tr.Data()[0])

	data := DataAs[float64](tr)
	assert.Equal(t, 6.0, data[tr.Descriptor().LinearIndex(2, 1)])
}

func TestMetadataDefaults(t *testing.T) {
	h, err := Wrap([]int32{1, 2}, 1, 2, RowMajor)
	require.NoError(t, err)
	assert.Equal(t, Ordinal, h.Metadata().FeatureType(1))
	assert.Equal(t, array.Int32, h.Metadata().DataType(0))

	f, err := Wrap([]float32{1, 2}, 1, 2, RowMajor)
	require.NoError(t, err)
	assert.Equal(t, Ratio, f.Metadata().FeatureType(0))
}

func TestBuilderFeatureType(t *testing.T) {
	var b Builder
	require.NoError(t, b.ResetEmpty(array.Float32, 2, 3, RowMajor))
	b.SetFeatureType(1, Nominal)

	h := b.Build()
	assert.Equal(t, Nominal, h.Metadata().FeatureType(1))
	assert.Equal(t, Ratio, h.Metadata().FeatureType(0))
	assert.Equal(t, make([]float32, 6), DataAs[float32](h))

	b.SetFeatureType(0, Interval)
	assert.Equal(t, Ratio, h.Metadata().FeatureType(0))
	h.Release()
	b.Release()
}

func TestBuilderMutableRaw(t *testing.T) {
	var b Builder
	_, err := b.MutableRaw(false)
	require.ErrorIs(t, err, ErrEmptyTable)

	require.NoError(t, b.ResetEmpty(array.Int16, 2, 2, RowMajor))
	raw, err := b.MutableRaw(true)
	require.NoError(t, err)
	assert.Equal(t, 8, raw.Count())

	snapshot := b.Build()
	defer snapshot.Release()
	_, err = b.MutableRaw(true)
	require.ErrorIs(t, err, array.ErrImmutable)

	raw, err = b.MutableRaw(false)
	require.NoError(t, err)
	data, err := raw.MutableData()
	require.NoError(t, err)
	data[0] = 0xff

	assert.Equal(t, []int16{0, 0, 0, 0}, DataAs[int16](snapshot))
	b.Release()
}

func TestEmptyTable(t *testing.T) {
	e := Empty()
	assert.Equal(t, KindEmpty, e.Kind())
	assert.Nil(t, e.Data())
	assert.Nil(t, DataAs[float32](e))
	assert.Equal(t, 0, e.Raw().Count())
	assert.Equal(t, KindEmpty, e.Transpose().Kind())
	e.Release()
}
