// Package resultstore reads a results folder produced by the ML pipeline:
// the case index, the case-to-patient mapping, and the optional metrics,
// config, notes and plot artifacts around them. All access is read-only
// and open-read-close; no handles survive a call.
package resultstore

import (
	"os"
	"path/filepath"

	"caseview/internal"
)

// Well-known file names inside a results folder
const (
	ReportsDir        = "explainability_reports"
	IndexFileCSV      = "index.csv"
	IndexFileXLSX     = "index.xlsx"
	MappingFile       = "case_mapping.csv"
	MetricsFile       = "patient_metrics_summary.csv"
	RunConfigFile     = "run_config.json"
	RunNotesFile      = "run_notes.md"
	ROCCurvesFile     = "roc_curves_patient_level.png"
	PRCurvesFile      = "pr_curves_patient_level.png"
	ConfusionFile     = "confusion_matrices_patient_level.png"
	CalibrationsDir   = "calibration_plots"
)

// Required columns of the case index
var RequiredColumns = []string{
	"case_id",
	"patient_id",
	"fold",
	"y_true",
	"p_calibrated",
	"uncertainty_std",
	"risk_band",
}

// Store reads one results folder. The root path never leaves this package
// in any returned value.
type Store struct {
	root   string
	logger *internal.Logger
}

// NewStore creates a store over the given results root
func NewStore(root string) *Store {
	return &Store{root: root, logger: internal.DefaultLogger}
}

func (s *Store) path(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

// indexPath resolves the case index, preferring the CSV form and falling
// back to the XLSX variant some pipeline versions emit.
func (s *Store) indexPath() (string, bool) {
	csvPath := s.path(ReportsDir, IndexFileCSV)
	if fileExists(csvPath) {
		return csvPath, true
	}
	xlsxPath := s.path(ReportsDir, IndexFileXLSX)
	if fileExists(xlsxPath) {
		return xlsxPath, true
	}
	return csvPath, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
