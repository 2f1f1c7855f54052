package models

// FeatureVector is the ordered, named numeric input to a scoring model.
// Names and Values are index-aligned and sorted alphabetically by name;
// that sort order is the binding contract with the trained model, so the
// vector must never be reordered after construction.
type FeatureVector struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

// Len returns the column count.
func (v *FeatureVector) Len() int {
	return len(v.Values)
}

// Append returns a new vector with one extra named column at the end.
// Used for the total-points model's market-line augmentation; the result
// intentionally breaks alphabetical order, matching how the model was
// trained (base columns sorted, augmentation appended last).
func (v *FeatureVector) Append(name string, value float64) *FeatureVector {
	names := make([]string, 0, len(v.Names)+1)
	names = append(names, v.Names...)
	names = append(names, name)
	values := make([]float64, 0, len(v.Values)+1)
	values = append(values, v.Values...)
	values = append(values, value)
	return &FeatureVector{Names: names, Values: values}
}
