// Package matrix implements deterministic expansion of independent
// configuration axes into their Cartesian product.
package matrix

import "github.com/m-mizutani/loom/pkg/domain/model"

// Expand produces the full Cartesian product of the given axes as an ordered
// sequence of combinations.
//
// Enumeration is outer-axis major: the first axis varies slowest, the last
// axis fastest, each in declaration order. The result is a pure function of
// the input; repeated expansion of the same axes yields the same sequence.
//
// The combination count is the product of the axis lengths: an axis with
// zero variants yields zero combinations, and zero axes yield the single
// empty combination (a job with no matrix dimensions).
func Expand(axes []model.Axis) []model.Combination {
	combos := []model.Combination{{}}

	for _, axis := range axes {
		next := make([]model.Combination, 0, len(combos)*len(axis.Variants))
		for _, c := range combos {
			for _, v := range axis.Variants {
				next = append(next, c.With(axis.Name, v))
			}
		}
		combos = next
	}

	return combos
}

// Size returns the number of combinations Expand would produce without
// materializing them.
func Size(axes []model.Axis) int {
	n := 1
	for _, axis := range axes {
		n *= len(axis.Variants)
	}
	return n
}
