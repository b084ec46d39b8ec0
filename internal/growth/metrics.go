package growth

import "math"

// Reached reports whether sample i of c lies within tol of the carrying capacity.
func Reached(c Curve, i int, tol float64) bool {
	if i < 0 || i >= c.Len() {
		return false
	}
	_, x := c.At(i)
	return math.Abs(x-c.Params.K) <= tol
}

// SettlingTime returns the earliest sample time from which the curve stays
// within tol of K until its last sample.
func SettlingTime(c Curve, tol float64) (float64, bool) {
	n := c.Len()
	idx := -1
	for i := n - 1; i >= 0; i-- {
		if !Reached(c, i, tol) {
			break
		}
		idx = i
	}
	if idx < 0 {
		return 0, false
	}
	t, _ := c.At(idx)
	return t, true
}

// InflectionTime is where x crosses K/2 and growth is fastest. It exists in
// forward time only for 0 < x0 < K/2 with a > 0.
func InflectionTime(c Curve) (float64, bool) {
	k := c.Params.K
	if !(c.X0 > 0 && c.X0 < k/2) || !(c.Params.A > 0) {
		return 0, false
	}
	return -math.Log(c.KPrime) / c.Params.A, true
}
