package accessor

import (
	"fmt"

	"github.com/born-ml/numtab/internal/array"
	"github.com/born-ml/numtab/internal/device"
	"github.com/born-ml/numtab/internal/table"
)

// aliasable reports whether reg of s can be returned as a view of raw:
// same element type, whole table, already dense row-major, and a buffer of
// exactly the table's size.
func aliasable[T array.Numeric](s table.Store, reg region, raw *array.Array[byte]) bool {
	d := s.Descriptor()
	return s.DataType() == array.DataTypeOf[T]() &&
		reg.whole(d) &&
		d.RowContiguous() &&
		raw.Count() == reg.count()*s.DataType().Size()
}

// view returns a read-only handle to raw viewed as T.
func view[T array.Numeric](raw *array.Array[byte]) *array.Array[T] {
	typed := array.Reinterpret[T](raw)
	defer typed.Release()
	return typed.ReadOnly()
}

// onHost returns a host-accessible handle to a, copying device memory.
func onHost[T array.Numeric](a *array.Array[T]) (*array.Array[T], error) {
	if a.Space().HostAccessible() {
		return a.Clone(), nil
	}
	return array.ToHostSync(a)
}

// releaseAfter releases a once ev has finished.
func releaseAfter(ev *device.Event, a interface{ Release() }) {
	if ev.Finished() {
		a.Release()
		return
	}
	go func() {
		_ = ev.Wait()
		a.Release()
	}()
}

// gatherInto converts reg of s into out, staging device tables on the host.
func gatherInto[T array.Numeric](out []T, s table.Store, raw *array.Array[byte], reg region, opts options) error {
	if reg.count() == 0 {
		return nil
	}
	src, err := onHost(raw)
	if err != nil {
		return err
	}
	defer src.Release()
	gather(out, src.Data(), s.DataType(), s.Descriptor(), reg, opts.parallel)
	return nil
}

func pull[T array.Numeric](s table.Store, reg region, opts options) (*array.Array[T], error) {
	raw := s.Raw()
	defer raw.Release()

	if raw.Space().HostAccessible() && aliasable[T](s, reg, raw) {
		return view[T](raw), nil
	}

	dst, err := array.Empty[T](reg.count())
	if err != nil {
		return nil, err
	}
	out, err := dst.MutableData()
	if err == nil {
		err = gatherInto(out, s, raw, reg, opts)
	}
	if err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

func pullSlice[T array.Numeric](dst []T, s table.Store, reg region, opts options) error {
	if len(dst) < reg.count() {
		return &CapacityError{Have: len(dst), Want: reg.count()}
	}
	raw := s.Raw()
	defer raw.Release()
	return gatherInto(dst[:reg.count()], s, raw, reg, opts)
}

func pullInto[T array.Numeric](dst *array.Array[T], s table.Store, reg region, opts options) error {
	n := reg.count()
	if dst.Count() < n {
		return &CapacityError{Have: dst.Count(), Want: n}
	}
	if !dst.HasMutableData() {
		return array.ErrImmutable
	}
	if dst.Space().HostAccessible() {
		out, err := dst.MutableData()
		if err != nil {
			return err
		}
		return pullSlice(out, s, reg, opts)
	}

	stage, err := pull[T](s, reg, opts)
	if err != nil {
		return err
	}
	defer stage.Release()
	ptr, err := dst.MutablePtr()
	if err != nil {
		return err
	}
	return dst.Queue().Memcpy(ptr, stage.Ptr(), stage.ByteSize()).Wait()
}

func pullOn[T array.Numeric](q *device.Queue, s table.Store, reg region, kind device.AllocKind, opts options) (*array.Array[T], *device.Event, error) {
	raw := s.Raw()
	defer raw.Release()

	if aliasable[T](s, reg, raw) {
		src := view[T](raw)
		if src.Queue() != nil && src.Queue().SameContext(q) && src.Space() == kind.Space() {
			return src, device.Completed(), nil
		}
		dst, err := array.EmptyOn[T](q, src.Count(), kind)
		if err != nil {
			src.Release()
			return nil, nil, err
		}
		ev, err := array.CopyFrom(dst, src)
		if err != nil {
			src.Release()
			dst.Release()
			return nil, nil, err
		}
		releaseAfter(ev, src)
		return dst, ev, nil
	}

	if owner := raw.Queue(); owner != nil && !owner.SameContext(q) {
		return nil, nil, fmt.Errorf("accessor: %w", device.ErrContextMismatch)
	}

	dst, err := array.EmptyOn[T](q, reg.count(), kind)
	if err != nil {
		return nil, nil, err
	}
	if kind.Space().HostAccessible() {
		out, err := dst.MutableData()
		if err == nil {
			err = gatherInto(out, s, raw, reg, opts)
		}
		if err != nil {
			dst.Release()
			return nil, nil, err
		}
		return dst, device.Completed(), nil
	}

	stage, err := pull[T](s, reg, opts)
	if err != nil {
		dst.Release()
		return nil, nil, err
	}
	ev, err := array.CopyFrom(dst, stage)
	if err != nil {
		stage.Release()
		dst.Release()
		return nil, nil, err
	}
	releaseAfter(ev, stage)
	return dst, ev, nil
}

func pullOnSync[T array.Numeric](q *device.Queue, s table.Store, reg region, kind device.AllocKind, opts options) (*array.Array[T], error) {
	dst, ev, err := pullOn[T](q, s, reg, kind, opts)
	if err != nil {
		return nil, err
	}
	if err := ev.Wait(); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// push validates everything before touching the table, so a failed push
// leaves it unchanged.
func push[T array.Numeric](s table.Store, src *array.Array[T], reg region, opts options) error {
	m, ok := s.(table.MutableStore)
	if !ok {
		return fmt.Errorf("accessor: %w: table is read-only, push through a builder", array.ErrImmutable)
	}
	n := reg.count()
	if src.Count() != n {
		return &RangeError{Begin: reg.r0, End: reg.r1, Extent: s.RowCount(), Have: src.Count(), Want: n}
	}
	if n == 0 {
		return nil
	}
	current := m.Raw()
	owner := current.Queue()
	current.Release()
	if owner != nil && src.Queue() != nil && !owner.SameContext(src.Queue()) {
		return fmt.Errorf("accessor: %w", device.ErrContextMismatch)
	}

	in, err := onHost(src)
	if err != nil {
		return err
	}
	defer in.Release()

	raw, err := m.MutableRaw(opts.inPlace)
	if err != nil {
		return err
	}
	if raw.Space().HostAccessible() {
		out, err := raw.MutableData()
		if err != nil {
			return err
		}
		scatter(out, in.Data(), m.DataType(), m.Descriptor(), reg, opts.parallel)
		return nil
	}

	stage, err := array.ToHostSync(raw)
	if err != nil {
		return err
	}
	defer stage.Release()
	out, err := stage.MutableData()
	if err != nil {
		return err
	}
	scatter(out, in.Data(), m.DataType(), m.Descriptor(), reg, opts.parallel)
	ev, err := array.CopyFrom(raw, stage)
	if err != nil {
		return err
	}
	return ev.Wait()
}
