package domain

import "math"

// EstimatedPositions applies the linearised stacking-decomposition formula
// to a set of real (unscaled) stackability counts, returning the
// number of floor positions that combination requires. This is the only
// implementation of the formula: the placement code in internal/solver and
// the truck's own position total both call it.
func (c StackCounts) EstimatedPositions() float64 {
	b, s, f, n, m := c.Base, c.Superior, c.Flexible, c.NoApilable, c.SiMismo

	diff := b - s
	absDiff := math.Abs(diff)

	m0 := math.Min(b, s)
	m1 := math.Min(absDiff, f)
	rem := f - m1
	half := math.Ceil(rem / 2)
	m2 := math.Max(absDiff-f, 0)

	pairQ := math.Floor(m / 2)
	selfRem := m - pairQ*2

	return m0 + m1 + half + m2 + n + pairQ + selfRem
}
