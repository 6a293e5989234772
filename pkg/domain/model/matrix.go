package model

// Selection is one axis variant chosen for a combination.
type Selection struct {
	Axis    string
	Variant Variant
}

// Combination is one fully resolved point of the matrix: exactly one variant
// per axis, in axis declaration order.
type Combination struct {
	Selections []Selection
}

// With returns a copy of the combination extended by one selection. The
// receiver is not modified.
func (c Combination) With(axis string, v Variant) Combination {
	selections := make([]Selection, 0, len(c.Selections)+1)
	selections = append(selections, c.Selections...)
	selections = append(selections, Selection{Axis: axis, Variant: v})
	return Combination{Selections: selections}
}

// VariantOf returns the variant selected for the named axis.
func (c Combination) VariantOf(axis string) (Variant, bool) {
	for _, s := range c.Selections {
		if s.Axis == axis {
			return s.Variant, true
		}
	}
	return Variant{}, false
}

// Field scans selections in axis order and returns the first variant field
// matching key. Axes are independent, so field names are expected to be
// distinct across axes.
func (c Combination) Field(key string) (string, bool) {
	for _, s := range c.Selections {
		if v, ok := s.Variant.Field(key); ok {
			return v, true
		}
	}
	return "", false
}
