package accessor

import (
	"fmt"

	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/parallel"
	"github.com/born-ml/numtab/internal/table"
)

// region is the rectangle [r0, r1) x [c0, c1) of a table.
type region struct {
	r0, r1 int
	c0, c1 int
}

func (g region) rows() int {
	return g.r1 - g.r0
}

func (g region) cols() int {
	return g.c1 - g.c0
}

func (g region) count() int {
	return g.rows() * g.cols()
}

func (g region) whole(d table.Descriptor) bool {
	return g.r0 == 0 && g.r1 == d.Rows && g.c0 == 0 && g.c1 == d.Cols
}

// gather copies reg out of the raw table bytes src into dst in row-major
// order, converting every element from dt to T.
func gather[T array.Numeric](dst []T, src []byte, dt array.DataType, d table.Descriptor, reg region, cfg parallel.Config) {
	if reg.count() == 0 {
		return
	}
	n := d.Footprint()
	switch dt {
	case array.Int8:
		gatherTyped(dst, array.View[int8](src, n), d, reg, cfg)
	case array.Int16:
		gatherTyped(dst, array.View[int16](src, n), d, reg, cfg)
	case array.Int32:
		gatherTyped(dst, array.View[int32](src, n), d, reg, cfg)
	case array.Int64:
		gatherTyped(dst, array.View[int64](src, n), d, reg, cfg)
	case array.Uint8:
		gatherTyped(dst, array.View[uint8](src, n), d, reg, cfg)
	case array.Uint16:
		gatherTyped(dst, array.View[uint16](src, n), d, reg, cfg)
	case array.Uint32:
		gatherTyped(dst, array.View[uint32](src, n), d, reg, cfg)
	case array.Uint64:
		gatherTyped(dst, array.View[uint64](src, n), d, reg, cfg)
	case array.Float32:
		gatherTyped(dst, array.View[float32](src, n), d, reg, cfg)
	case array.Float64:
		gatherTyped(dst, array.View[float64](src, n), d, reg, cfg)
	default:
		panic(fmt.Sprintf("accessor: unsupported data type %s", dt))
	}
}

// scatter is the inverse of gather: it writes the row-major elements of src
// into reg of the raw table bytes dst, converting from T to dt.
func scatter[T array.Numeric](dst []byte, src []T, dt array.DataType, d table.Descriptor, reg region, cfg parallel.Config) {
	if reg.count() == 0 {
		return
	}
	n := d.Footprint()
	switch dt {
	case array.Int8:
		scatterTyped(array.View[int8](dst, n), src, d, reg, cfg)
	case array.Int16:
		scatterTyped(array.View[int16](dst, n), src, d, reg, cfg)
	case array.Int32:
		scatterTyped(array.View[int32](dst, n), src, d, reg, cfg)
	case array.Int64:
		scatterTyped(array.View[int64](dst, n), src, d, reg, cfg)
	case array.Uint8:
		scatterTyped(array.View[uint8](dst, n), src, d, reg, cfg)
	case array.Uint16:
		scatterTyped(array.View[uint16](dst, n), src, d, reg, cfg)
	case array.Uint32:
		scatterTyped(array.View[uint32](dst, n), src, d, reg, cfg)
	case array.Uint64:
		scatterTyped(array.View[uint64](dst, n), src, d, reg, cfg)
	case array.Float32:
		scatterTyped(array.View[float32](dst, n), src, d, reg, cfg)
	case array.Float64:
		scatterTyped(array.View[float64](dst, n), src, d, reg, cfg)
	default:
		panic(fmt.Sprintf("accessor: unsupported data type %s", dt))
	}
}

func gatherTyped[S, T array.Numeric](dst []T, src []S, d table.Descriptor, reg region, cfg parallel.Config) {
	w := reg.cols()
	parallel.ForChunks(reg.rows(), func(begin, end int) {
		for i := begin; i < end; i++ {
			row := reg.r0 + i
			out := dst[i*w : (i+1)*w]
			if d.Layout == table.RowMajor {
				in := src[row*d.Stride+reg.c0 : row*d.Stride+reg.c1]
				for j, v := range in {
					out[j] = T(v)
				}
				continue
			}
			for j := range out {
				out[j] = T(src[(reg.c0+j)*d.Stride+row])
			}
		}
	}, cfg)
}

func scatterTyped[S, T array.Numeric](dst []S, src []T, d table.Descriptor, reg region, cfg parallel.Config) {
	w := reg.cols()
	parallel.ForChunks(reg.rows(), func(begin, end int) {
		for i := begin; i < end; i++ {
			row := reg.r0 + i
			in := src[i*w : (i+1)*w]
			if d.Layout == table.RowMajor {
				out := dst[row*d.Stride+reg.c0 : row*d.Stride+reg.c1]
				for j, v := range in {
					out[j] = S(v)
				}
				continue
			}
			for j, v := range in {
				dst[(reg.c0+j)*d.Stride+row] = S(v)
			}
		}
	}, cfg)
}
