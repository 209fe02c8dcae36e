// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/numtab/array"
	"github.com/born-ml/numtab/device"
	"github.com/born-ml/numtab/table"
)

func TestBuildPushPull(t *testing.T) {
	b := table.NewBuilder()
	defer b.Release()
	require.NoError(t, b.ResetEmpty(array.Float32, 3, 2, table.ColumnMajor))

	require.NoError(t, table.NewRow[float64](b).PushSlice([]float64{1, 2, 3, 4}, table.Rows(1, table.End)))

	h := b.Build()
	defer h.Release()
	assert.Equal(t, table.KindHomogen, h.Kind())

	rows, err := table.NewRow[int32](h).Pull(table.All())
	require.NoError(t, err)
	defer rows.Release()
	assert.Equal(t, []int32{0, 0, 1, 2, 3, 4}, rows.Data())

	col, err := table.NewColumn[float32](h).Pull(1, table.All())
	require.NoError(t, err)
	defer col.Release()
	assert.Equal(t, []float32{0, 2, 4}, col.Data())
}

func TestPullOnDevice(t *testing.T) {
	d, err := device.Open(device.DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	h, err := table.Wrap([]float64{1, 2, 3, 4}, 2, 2, table.RowMajor)
	require.NoError(t, err)
	defer h.Release()

	out, err := table.NewRow[float32](h).PullOnSync(d.Queue, table.Rows(1, 2), device.AllocDevice)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, device.Device, out.Space())

	back, err := array.ToHostSync(out)
	require.NoError(t, err)
	defer back.Release()
	assert.Equal(t, []float32{3, 4}, back.Data())
}

func TestAccessorUsesDeviceParallelSettings(t *testing.T) {
	cfg := device.DefaultConfig()
	cfg.Parallel.Enabled = true
	cfg.Parallel.Workers = 4
	cfg.Parallel.MinChunk = 16
	d, err := device.Open(cfg)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, 4, d.Parallel.NumWorkers)

	const rows, cols = 1000, 2
	data := make([]int32, rows*cols)
	for i := range data {
		data[i] = int32(i)
	}
	h, err := table.Wrap(data, rows, cols, table.ColumnMajor)
	require.NoError(t, err)
	defer h.Release()

	out, err := table.NewRow[int64](h, table.WithParallel(d.Parallel)).Pull(table.All())
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []int64{0, rows, 1, rows + 1}, out.Data()[:4])
}

func TestRangeError(t *testing.T) {
	h, err := table.Wrap([]int8{1, 2}, 2, 1, table.RowMajor)
	require.NoError(t, err)
	defer h.Release()

	_, err = table.NewRow[int8](h).Pull(table.Rows(0, 3))
	var rerr *table.RangeError
	require.ErrorAs(t, err, &rerr)
}
