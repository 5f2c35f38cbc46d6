package ui

import (
	"net/http"
	"strconv"

	"caseview/domain/results"
)

// parseFilterForm builds a replacement FilterState from a filter bar
// submission. Missing or malformed values fall back to the identity bounds
// so a bad query string can never error a render.
func parseFilterForm(r *http.Request) results.FilterState {
	state := results.DefaultFilterState()

	if err := r.ParseForm(); err != nil {
		return state
	}

	for _, raw := range r.Form["band"] {
		if raw != "" {
			// UNKNOWN is selectable so tables with bad band values stay reachable
			state.Bands = append(state.Bands, results.NormalizeBand(raw))
		}
	}
	for _, raw := range r.Form["class"] {
		if v, err := strconv.Atoi(raw); err == nil && (v == 0 || v == 1) {
			state.Classes = append(state.Classes, v)
		}
	}
	for _, raw := range r.Form["fold"] {
		if v, err := strconv.Atoi(raw); err == nil {
			state.Folds = append(state.Folds, v)
		}
	}

	state.ProbMin = formFloat(r, "prob_min", 0, 0, results.DefaultProbMax)
	state.ProbMax = formFloat(r, "prob_max", results.DefaultProbMax, 0, results.DefaultProbMax)
	state.UncertMin = formFloat(r, "uncert_min", 0, 0, results.DefaultUncertMax)
	state.UncertMax = formFloat(r, "uncert_max", results.DefaultUncertMax, 0, results.DefaultUncertMax)
	state.CaseSearch = r.Form.Get("q")
	return state
}

func formFloat(r *http.Request, key string, fallback, min, max float64) float64 {
	raw := r.Form.Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		return fallback
	}
	return v
}
