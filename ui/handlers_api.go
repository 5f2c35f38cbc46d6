package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"caseview/domain/results"
)

// The JSON API serves the same filtered view the pages render. Every body
// is built from export objects and summary values only; patient identifiers
// and paths have no representation here.

func (a *App) handleAPICases(w http.ResponseWriter, r *http.Request) {
	snap := a.service.Snapshot()
	filters := a.sessions.Filters(r)
	filtered, descs := results.Apply(snap.Table, filters)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         snap.Connection.Status,
		"total":          snap.Table.Len(),
		"shown":          filtered.Len(),
		"active_filters": descs,
		"cases":          filtered.Exports(),
	})
}

func (a *App) handleAPICase(w http.ResponseWriter, r *http.Request) {
	snap := a.service.Snapshot()
	rec, ok := snap.Table.Get(chi.URLParam(r, "caseID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "case not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec.Export())
}

func (a *App) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	snap := a.service.Snapshot()
	filtered, _ := results.Apply(snap.Table, a.sessions.Filters(r))
	writeJSON(w, http.StatusOK, results.Summarize(filtered))
}

func (a *App) handleAPIArtifacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.Snapshot().Artifacts)
}

func (a *App) handleAPIFilters(w http.ResponseWriter, r *http.Request) {
	filters := a.sessions.Filters(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":        filters,
		"is_default":   filters.IsDefault(),
		"descriptions": filters.Descriptions(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
