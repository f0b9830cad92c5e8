package predict

import "sort"

// LabelEncoder maps categorical string values to integer classes. Classes
// are assigned in sorted value order at fit time so repeated training runs
// over the same data produce the same encoding.
type LabelEncoder struct {
	Classes map[string]int `json:"classes"`
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{Classes: make(map[string]int)}
}

func (e *LabelEncoder) Fit(values []string) {
	unique := make(map[string]bool, len(values))
	for _, v := range values {
		unique[v] = true
	}

	sorted := make([]string, 0, len(unique))
	for v := range unique {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)

	e.Classes = make(map[string]int, len(sorted))
	for i, v := range sorted {
		e.Classes[v] = i
	}
}

// Transform returns the class index for a value. The second return reports
// whether the value was seen at fit time; unknown values map to class 0.
func (e *LabelEncoder) Transform(value string) (int, bool) {
	class, ok := e.Classes[value]
	return class, ok
}
