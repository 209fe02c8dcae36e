// Package accessor reads and writes table rows and columns as arrays of a
// caller-chosen element type.
package accessor

import (
	"fmt"
)

// End marks "up to the last row or column" in a Range.
const End = -1

// Range is the half-open interval [Begin, End) of rows or columns.
type Range struct {
	Begin int
	End   int
}

// All returns the range covering every row or column.
func All() Range {
	return Range{Begin: 0, End: End}
}

// Rows returns the range [begin, end).
func Rows(begin, end int) Range {
	return Range{Begin: begin, End: end}
}

// resolve replaces the End sentinel with extent and validates the result.
func (r Range) resolve(extent int) (begin, end int, err error) {
	begin, end = r.Begin, r.End
	if end == End {
		end = extent
	}
	if begin < 0 || end > extent || begin > end {
		return 0, 0, &RangeError{Begin: r.Begin, End: r.End, Extent: extent}
	}
	return begin, end, nil
}

// RangeError reports an accessor range outside [0, extent], a reversed
// range, or a push source whose element count does not fill the range.
type RangeError struct {
	Begin  int
	End    int
	Extent int

	// Set for push sources only; both zero otherwise.
	Have int // Elements supplied
	Want int // Elements the range covers
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	if e.Have != e.Want {
		return fmt.Sprintf("range [%d, %d) covers %d elements, source holds %d", e.Begin, e.End, e.Want, e.Have)
	}
	return fmt.Sprintf("range [%d, %d) is invalid for extent %d", e.Begin, e.End, e.Extent)
}

// CapacityError reports a destination array or slice too small for the
// requested range.
type CapacityError struct {
	Have int // Elements available
	Want int // Elements required
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("buffer holds %d elements, %d required", e.Have, e.Want)
}
