package resultstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"caseview/domain/results"
	"caseview/internal/errors"
)

// Artifact keys as consumed by the presentation layer
const (
	ArtifactIndex       = "index_csv"
	ArtifactMapping     = "case_mapping"
	ArtifactMetrics     = "metrics_summary"
	ArtifactRunConfig   = "run_config"
	ArtifactRunNotes    = "run_notes"
	ArtifactCalibration = "calibration_plots"
	ArtifactROC         = "roc_curves"
	ArtifactPR          = "pr_curves"
	ArtifactConfusion   = "confusion_matrix"
	ArtifactCaseImages  = "case_images"
)

// LocateArtifacts checks presence of every known artifact. Existence only,
// no content validation. Labels are sanitized basenames; the full path is
// never placed into the returned structure.
func (s *Store) LocateArtifacts() results.ArtifactAvailability {
	indexPath, indexOK := s.indexPath()

	avail := results.ArtifactAvailability{
		Artifacts: map[string]results.ArtifactStatus{
			ArtifactIndex:       {Present: indexOK, Label: SanitizeLabel(indexPath)},
			ArtifactMapping:     {Present: fileExists(s.path(ReportsDir, MappingFile)), Label: MappingFile},
			ArtifactMetrics:     {Present: fileExists(s.path(MetricsFile)), Label: MetricsFile},
			ArtifactRunConfig:   {Present: fileExists(s.path(RunConfigFile)), Label: RunConfigFile},
			ArtifactRunNotes:    {Present: fileExists(s.path(RunNotesFile)), Label: RunNotesFile},
			ArtifactCalibration: {Present: s.hasCalibrationPlots(), Label: CalibrationsDir},
			ArtifactROC:         {Present: fileExists(s.path(ROCCurvesFile)), Label: ROCCurvesFile},
			ArtifactPR:          {Present: fileExists(s.path(PRCurvesFile)), Label: PRCurvesFile},
			ArtifactConfusion:   {Present: fileExists(s.path(ConfusionFile)), Label: ConfusionFile},
		},
	}

	count := s.countCaseImages()
	avail.Artifacts[ArtifactCaseImages] = results.ArtifactStatus{
		Present: count > 0,
		Label:   "case images",
	}
	avail.CaseImageCount = count
	return avail
}

// SanitizeLabel reduces a path to its final segment for display. Empty or
// separator-only segments fall back to a generic label.
func SanitizeLabel(path string) string {
	base := filepath.Base(strings.TrimRight(path, "/\\"))
	if base == "" || base == "." || base == string(filepath.Separator) || base == "/" || base == "\\" {
		return "results"
	}
	return base
}

func (s *Store) hasCalibrationPlots() bool {
	dir := s.path(CalibrationsDir)
	if !dirExists(dir) {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	return err == nil && len(matches) > 0
}

func (s *Store) countCaseImages() int {
	matches, err := filepath.Glob(filepath.Join(s.path(ReportsDir), "Case-*.png"))
	if err != nil {
		return 0
	}
	return len(matches)
}

// caseIDPattern limits image lookups to well-formed case identifiers so a
// crafted id can never escape the reports folder.
var caseIDPattern = regexp.MustCompile(`^Case-[0-9A-Za-z_-]+$`)

// CaseImage returns the explainability image bytes for a case, or NOT_FOUND
// when the case has no image.
func (s *Store) CaseImage(caseID string) ([]byte, error) {
	if !caseIDPattern.MatchString(caseID) {
		return nil, errors.InvalidInput("malformed case identifier")
	}
	data, err := os.ReadFile(s.path(ReportsDir, caseID+".png"))
	if err != nil {
		return nil, errors.NotFound("explainability image")
	}
	return data, nil
}

// ReadMetricsSummary parses the optional patient-level metrics table.
// Absent or unreadable files yield nil, nil: the artifact is optional.
func (s *Store) ReadMetricsSummary() ([]results.MetricsRow, error) {
	path := s.path(MetricsFile)
	if !fileExists(path) {
		return nil, nil
	}
	table, err := ReadTable(path)
	if err != nil {
		s.logger.Warn("metrics summary unreadable: %v", err)
		return nil, nil
	}

	rows := make([]results.MetricsRow, 0, len(table.Rows))
	for _, raw := range table.Rows {
		rows = append(rows, results.MetricsRow{
			Model:       raw["model"],
			AUC:         parseFloatOrZero(raw["AUC"]),
			PRAUC:       parseFloatOrZero(raw["PR_AUC"]),
			Sensitivity: parseFloatOrZero(raw["Sensitivity"]),
			Specificity: parseFloatOrZero(raw["Specificity"]),
			Accuracy:    parseFloatOrZero(raw["Accuracy"]),
			F1:          parseFloatOrZero(raw["F1"]),
		})
	}
	return rows, nil
}

// ReadRunConfig parses the optional run_config.json document. Unknown keys
// are preserved for display; absent or corrupt files yield nil, nil.
func (s *Store) ReadRunConfig() (*results.RunConfig, error) {
	path := s.path(RunConfigFile)
	if !fileExists(path) {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("run config unreadable: %v", err)
		return nil, nil
	}

	var cfg results.RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("run config is not valid JSON: %v", err)
		return nil, nil
	}

	var extra map[string]interface{}
	if err := json.Unmarshal(data, &extra); err == nil {
		for _, known := range []string{"timestamp", "n_patients", "n_masld", "n_healthy", "batch_size", "cnn_epochs", "cnn_lr", "calibration_bins"} {
			delete(extra, known)
		}
		if len(extra) > 0 {
			cfg.Extra = extra
		}
	}
	return &cfg, nil
}

// ReadRunNotes returns the optional markdown run notes, raw
func (s *Store) ReadRunNotes() ([]byte, error) {
	path := s.path(RunNotesFile)
	if !fileExists(path) {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("run notes unreadable: %v", err)
		return nil, nil
	}
	return data, nil
}

// PlotImage serves one of the fixed patient-level plot files by artifact
// key. Keys outside the known set are rejected.
func (s *Store) PlotImage(key string) ([]byte, error) {
	var name string
	switch key {
	case ArtifactROC:
		name = ROCCurvesFile
	case ArtifactPR:
		name = PRCurvesFile
	case ArtifactConfusion:
		name = ConfusionFile
	default:
		return nil, errors.InvalidInput("unknown plot artifact")
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, errors.NotFound("plot image")
	}
	return data, nil
}

func parseFloatOrZero(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
