package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"caseview/app"
	"caseview/internal"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// App is the viewer's web application: a chi router over the results
// service with embedded templates and per-session filter state.
type App struct {
	router    *chi.Mux
	service   *app.ResultsService
	sessions  *SessionStore
	templates *template.Template
	logger    *internal.Logger
}

// NewApp creates the UI application
func NewApp(service *app.ResultsService, sessions *SessionStore) (*App, error) {
	funcMap := template.FuncMap{
		"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"num3":  func(v float64) string { return fmt.Sprintf("%.3f", v) },
		"lower": strings.ToLower,
		"bandClass": func(band interface{}) string {
			return "band-" + strings.ToLower(strings.ReplaceAll(fmt.Sprint(band), "-", ""))
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		sessions:  sessions,
		templates: templates,
		logger:    internal.DefaultLogger,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

func (a *App) setupRoutes() {
	// Pages
	a.router.Get("/", a.handleDashboard)
	a.router.Get("/cases", a.handleCaseExplorer)
	a.router.Get("/cases/{caseID}", a.handleCaseDetail)
	a.router.Get("/performance", a.handlePerformance)

	// Connection lifecycle
	a.router.Post("/connect", a.handleConnect)
	a.router.Post("/demo", a.handleDemo)
	a.router.Post("/disconnect", a.handleDisconnect)

	// Filter state
	a.router.Post("/filters", a.handleFiltersUpdate)
	a.router.Post("/filters/reset", a.handleFiltersReset)

	// Images and charts
	a.router.Get("/images/cases/{caseID}.png", a.handleCaseImage)
	a.router.Get("/images/plots/{key}.png", a.handlePlotImage)
	a.router.Get("/charts/probability.png", a.handleProbabilityChart)
	a.router.Get("/charts/bands.png", a.handleBandChart)
	a.router.Get("/charts/scatter.png", a.handleScatterChart)

	// Export
	a.router.Get("/export.xlsx", a.handleExportXLSX)

	// JSON API
	a.router.Get("/api/cases", a.handleAPICases)
	a.router.Get("/api/cases/{caseID}", a.handleAPICase)
	a.router.Get("/api/summary", a.handleAPISummary)
	a.router.Get("/api/artifacts", a.handleAPIArtifacts)
	a.router.Get("/api/filters", a.handleAPIFilters)
}

// Router exposes the http handler, for serving and for tests
func (a *App) Router() http.Handler {
	return a.router
}

// Serve starts the HTTP server on the given address
func (a *App) Serve(addr string) error {
	a.logger.Info("caseview listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// renderTemplate executes a page template into a buffer first so template
// errors surface as a 500 instead of a half-written page.
func (a *App) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("template %s: %v", name, err)
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
