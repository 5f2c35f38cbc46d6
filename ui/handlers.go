package ui

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"html/template"

	"caseview/app"
	"caseview/domain/results"
	"caseview/internal/errors"
)

// pageData is the view model shared by every page template
type pageData struct {
	Title       string
	Active      string
	Status      results.ConnectionStatus
	FolderName  string
	IsDemo      bool
	HasData     bool
	FlashError  string
	Filters     results.FilterState
	ActiveDescs []string
	Filtered    *results.CaseTable
	Summary     results.Summary
	Snapshot    *app.Snapshot
}

// newPageData assembles the common view model: current snapshot, session
// filters applied to the table, and the resulting summary.
func (a *App) newPageData(r *http.Request, title, active string) pageData {
	snap := a.service.Snapshot()
	filters := a.sessions.Filters(r)
	filtered, descs := results.Apply(snap.Table, filters)
	summary := results.Summarize(filtered)
	// Image availability is an artifact-level figure, not a row attribute,
	// when the full table is unfiltered
	if filters.IsDefault() && snap.Artifacts.CaseImageCount > summary.ImagesAvailable {
		summary.ImagesAvailable = snap.Artifacts.CaseImageCount
	}

	return pageData{
		Title:       title,
		Active:      active,
		Status:      snap.Connection.Status,
		FolderName:  snap.Connection.FolderName,
		IsDemo:      snap.IsDemo(),
		HasData:     snap.HasData(),
		FlashError:  r.URL.Query().Get("error"),
		Filters:     filters,
		ActiveDescs: descs,
		Filtered:    filtered,
		Summary:     summary,
		Snapshot:    snap,
	}
}

type dashboardData struct {
	pageData
	TopHighRisk  []results.CaseRecord
	TopUncertain []results.CaseRecord
	SubsetNote   string
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		pageData:     a.newPageData(r, "Dashboard - Caseview", "dashboard"),
		TopHighRisk:  nil,
		TopUncertain: nil,
	}
	data.TopHighRisk = results.TopByProbability(data.Filtered, 5)
	data.TopUncertain = results.TopByUncertainty(data.Filtered, 5)

	// The mapping can cover more patients than the index has reports for
	if cfg := data.Snapshot.RunConfig; cfg != nil && cfg.NPatients > data.Snapshot.Table.Len() {
		data.SubsetNote = fmt.Sprintf(
			"Showing %d explainability reports out of %d patients in the full run.",
			data.Snapshot.Table.Len(), cfg.NPatients)
	}
	a.renderTemplate(w, "dashboard.html", data)
}

type caseExplorerData struct {
	pageData
	Selected *results.CaseRecord
}

func (a *App) handleCaseExplorer(w http.ResponseWriter, r *http.Request) {
	data := caseExplorerData{pageData: a.newPageData(r, "Case Explorer - Caseview", "cases")}
	if id := r.URL.Query().Get("selected"); id != "" {
		if rec, ok := data.Filtered.Get(id); ok {
			data.Selected = &rec
		}
	}
	if data.Selected == nil && !data.Filtered.IsEmpty() {
		rec := data.Filtered.Records[0]
		data.Selected = &rec
	}
	a.renderTemplate(w, "cases.html", data)
}

func (a *App) handleCaseDetail(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	snap := a.service.Snapshot()
	if _, ok := snap.Table.Get(caseID); !ok {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/cases?selected="+url.QueryEscape(caseID), http.StatusSeeOther)
}

type performanceData struct {
	pageData
	Metrics   []results.MetricsRow
	RunConfig *results.RunConfig
	RunNotes  template.HTML
}

func (a *App) handlePerformance(w http.ResponseWriter, r *http.Request) {
	data := performanceData{pageData: a.newPageData(r, "Performance & Run Info - Caseview", "performance")}
	data.Metrics = data.Snapshot.Metrics
	data.RunConfig = data.Snapshot.RunConfig
	data.RunNotes = renderMarkdown(data.Snapshot.RunNotes)
	a.renderTemplate(w, "performance.html", data)
}

// renderMarkdown converts the optional run notes to HTML
func renderMarkdown(src []byte) template.HTML {
	if len(src) == 0 {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML(src, p, renderer))
}

func (a *App) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "invalid connect request")
		return
	}
	root := r.Form.Get("results_path")
	if root == "" {
		redirectWithError(w, r, "results folder is required")
		return
	}
	if err := a.service.Connect(root); err != nil {
		a.logger.Warn("connect failed: %v", err)
		redirectWithError(w, r, userMessage(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleDemo(w http.ResponseWriter, r *http.Request) {
	a.service.ConnectDemo()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	a.service.Disconnect()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleFiltersUpdate(w http.ResponseWriter, r *http.Request) {
	state := parseFilterForm(r)
	a.sessions.Update(w, r, state)
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (a *App) handleFiltersReset(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	a.sessions.Reset(w, r)
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (a *App) handleCaseImage(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.CaseImage(chi.URLParam(r, "caseID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (a *App) handlePlotImage(w http.ResponseWriter, r *http.Request) {
	data, err := a.service.PlotImage(chi.URLParam(r, "key"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// backTo returns the form's declared return page, restricted to known pages
func backTo(r *http.Request) string {
	switch r.Form.Get("return") {
	case "cases":
		return "/cases"
	case "performance":
		return "/performance"
	default:
		return "/"
	}
}

// userMessage extracts a display-safe message: structured errors carry
// their own sanitized text, anything else gets a generic line.
func userMessage(err error) string {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr.UserMessage()
	}
	return "could not load results folder"
}

func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
