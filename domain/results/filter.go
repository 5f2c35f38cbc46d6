package results

import (
	"fmt"
	"sort"
	"strings"
)

// FilterState is the set of active predicate selections. The zero value of
// DefaultFilterState passes every record (identity filter). Updates replace
// the whole value; nothing mutates a state in place.
type FilterState struct {
	Bands      []RiskBand `json:"bands"`
	Classes    []int      `json:"classes"`
	Folds      []int      `json:"folds"`
	ProbMin    float64    `json:"prob_min"`
	ProbMax    float64    `json:"prob_max"`
	UncertMin  float64    `json:"uncert_min"`
	UncertMax  float64    `json:"uncert_max"`
	CaseSearch string     `json:"case_search"`
}

// Bounds the range sliders default to
const (
	DefaultProbMax   = 1.0
	DefaultUncertMax = 1.0
)

// DefaultFilterState returns the identity filter
func DefaultFilterState() FilterState {
	return FilterState{
		ProbMin:   0,
		ProbMax:   DefaultProbMax,
		UncertMin: 0,
		UncertMax: DefaultUncertMax,
	}
}

// IsDefault reports whether no dimension narrows the table
func (f FilterState) IsDefault() bool {
	return len(f.Bands) == 0 &&
		len(f.Classes) == 0 &&
		len(f.Folds) == 0 &&
		f.ProbMin <= 0 && f.ProbMax >= DefaultProbMax &&
		f.UncertMin <= 0 && f.UncertMax >= DefaultUncertMax &&
		f.CaseSearch == ""
}

// Matches reports whether a single record passes every active dimension.
// Dimensions combine with AND; values within one dimension combine with OR.
// Range bounds are inclusive.
func (f FilterState) Matches(r CaseRecord) bool {
	if len(f.Bands) > 0 && !containsBand(f.Bands, r.Band) {
		return false
	}
	if len(f.Classes) > 0 && !containsInt(f.Classes, r.YTrue) {
		return false
	}
	if len(f.Folds) > 0 && !containsInt(f.Folds, r.Fold) {
		return false
	}
	if r.PCalibrated < f.ProbMin || r.PCalibrated > f.ProbMax {
		return false
	}
	if r.UncertaintyStd < f.UncertMin || r.UncertaintyStd > f.UncertMax {
		return false
	}
	if f.CaseSearch != "" && !strings.Contains(strings.ToLower(r.CaseID), strings.ToLower(f.CaseSearch)) {
		return false
	}
	return true
}

// Descriptions returns one human-readable string per non-default dimension.
// Strings reference case identifiers and numeric bounds only.
func (f FilterState) Descriptions() []string {
	var out []string
	if len(f.Bands) > 0 {
		names := make([]string, len(f.Bands))
		for i, b := range f.Bands {
			names[i] = string(b)
		}
		out = append(out, "Risk band: "+strings.Join(names, ", "))
	}
	if len(f.Classes) > 0 {
		names := make([]string, len(f.Classes))
		for i, c := range f.Classes {
			names[i] = ClassLabel(c)
		}
		out = append(out, "Class: "+strings.Join(names, ", "))
	}
	if len(f.Folds) > 0 {
		folds := append([]int(nil), f.Folds...)
		sort.Ints(folds)
		names := make([]string, len(folds))
		for i, fd := range folds {
			names[i] = fmt.Sprintf("%d", fd)
		}
		out = append(out, "Fold: "+strings.Join(names, ", "))
	}
	if f.ProbMin > 0 || f.ProbMax < DefaultProbMax {
		out = append(out, fmt.Sprintf("Probability: %.2f–%.2f", f.ProbMin, f.ProbMax))
	}
	if f.UncertMin > 0 || f.UncertMax < DefaultUncertMax {
		out = append(out, fmt.Sprintf("Uncertainty: %.2f–%.2f", f.UncertMin, f.UncertMax))
	}
	if f.CaseSearch != "" {
		out = append(out, "Case ID contains "+strings.ToUpper(f.CaseSearch))
	}
	return out
}

// ClassLabel maps a binary label to its display name
func ClassLabel(yTrue int) string {
	if yTrue == 1 {
		return "MASLD"
	}
	return "Healthy"
}

// Apply filters the table and returns the surviving subset plus the active
// filter descriptions. Pure: the input table is never mutated, and same
// inputs always yield the same output.
func Apply(table *CaseTable, state FilterState) (*CaseTable, []string) {
	if table == nil {
		return NewCaseTable(nil), state.Descriptions()
	}
	filtered := make([]CaseRecord, 0, len(table.Records))
	for _, r := range table.Records {
		if state.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	out := NewCaseTable(filtered)
	out.Info = table.Info
	return out, state.Descriptions()
}

// TopByProbability returns up to n records with the highest calibrated
// probability, highest first. Ties keep table order.
func TopByProbability(table *CaseTable, n int) []CaseRecord {
	return topBy(table, n, func(r CaseRecord) float64 { return r.PCalibrated })
}

// TopByUncertainty returns up to n records with the highest uncertainty,
// highest first.
func TopByUncertainty(table *CaseTable, n int) []CaseRecord {
	return topBy(table, n, func(r CaseRecord) float64 { return r.UncertaintyStd })
}

func topBy(table *CaseTable, n int, key func(CaseRecord) float64) []CaseRecord {
	if table == nil || n <= 0 {
		return nil
	}
	sorted := append([]CaseRecord(nil), table.Records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func containsBand(bands []RiskBand, b RiskBand) bool {
	for _, v := range bands {
		if v == b {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
