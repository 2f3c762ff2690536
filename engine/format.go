package engine

import (
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// FormatValue renders integral values without a fractional part and every
// other value in its shortest exact decimal form.
func FormatValue[F constraints.Float](f F) string {
	v := float64(f)
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
