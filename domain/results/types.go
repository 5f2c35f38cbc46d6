package results

import (
	"strings"
)

// RiskBand is the coarse risk bucket derived from calibrated probability
type RiskBand string

const (
	BandLow      RiskBand = "LOW"
	BandLowMod   RiskBand = "LOW-MOD"
	BandModerate RiskBand = "MODERATE"
	BandHigh     RiskBand = "HIGH"
	// BandUnknown is the catch-all for values the pipeline emitted that we
	// do not recognize. Kept visible rather than silently recomputed.
	BandUnknown RiskBand = "UNKNOWN"
)

// Bands lists the known bands in display order (UNKNOWN excluded)
var Bands = []RiskBand{BandLow, BandLowMod, BandModerate, BandHigh}

// Probability thresholds for band derivation
const (
	ThresholdLow      = 0.30
	ThresholdLowMod   = 0.50
	ThresholdModerate = 0.75
)

// BandForProbability derives the risk band from a calibrated probability
func BandForProbability(p float64) RiskBand {
	switch {
	case p < ThresholdLow:
		return BandLow
	case p < ThresholdLowMod:
		return BandLowMod
	case p < ThresholdModerate:
		return BandModerate
	default:
		return BandHigh
	}
}

// NormalizeBand maps a stored band value onto the known enum, case-insensitively.
// Unrecognized values map to BandUnknown so a bad row never fails a whole load.
func NormalizeBand(raw string) RiskBand {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LOW":
		return BandLow
	case "LOW-MOD", "LOW_MOD", "LOWMOD":
		return BandLowMod
	case "MODERATE", "MOD":
		return BandModerate
	case "HIGH":
		return BandHigh
	default:
		return BandUnknown
	}
}

// CaseRecord is one scored examination. PatientID is internal-only: it is
// never serialized and never placed on any output surface.
type CaseRecord struct {
	CaseID         string   `json:"case_id"`
	PatientID      string   `json:"-"`
	Fold           int      `json:"fold"`
	YTrue          int      `json:"y_true"`
	PCalibrated    float64  `json:"p_calibrated"`
	UncertaintyStd float64  `json:"uncertainty_std"`
	Band           RiskBand `json:"risk_band"`
	HasImage       bool     `json:"has_image"`
}

// Export returns the JSON-safe per-case export object
func (r CaseRecord) Export() CaseExport {
	return CaseExport{
		CaseID:         r.CaseID,
		Band:           r.Band,
		PCalibrated:    r.PCalibrated,
		UncertaintyStd: r.UncertaintyStd,
		YTrue:          r.YTrue,
		Fold:           r.Fold,
	}
}

// CaseExport is the per-case object handed to output surfaces.
// It deliberately has no patient identifier and no path fields.
type CaseExport struct {
	CaseID         string   `json:"case_id"`
	Band           RiskBand `json:"risk_band"`
	PCalibrated    float64  `json:"p_calibrated"`
	UncertaintyStd float64  `json:"uncertainty_std"`
	YTrue          int      `json:"y_true"`
	Fold           int      `json:"fold"`
}

// LoadInfo carries non-fatal bookkeeping from a load pass
type LoadInfo struct {
	RowsDropped    int `json:"rows_dropped"`
	DuplicatesSeen int `json:"duplicates_seen"`
	MappingRows    int `json:"mapping_rows"`
}

// CaseTable is an ordered collection of case records, unique by CaseID.
// Order is the insertion order of the source file. A table is immutable
// after load; reconnecting replaces it wholesale.
type CaseTable struct {
	Records []CaseRecord
	Info    LoadInfo
}

// NewCaseTable builds a table over the given records
func NewCaseTable(records []CaseRecord) *CaseTable {
	return &CaseTable{Records: records}
}

// Len returns the number of records
func (t *CaseTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// IsEmpty reports whether the table holds no records
func (t *CaseTable) IsEmpty() bool {
	return t.Len() == 0
}

// Get returns the record with the given case id
func (t *CaseTable) Get(caseID string) (CaseRecord, bool) {
	if t == nil {
		return CaseRecord{}, false
	}
	for _, r := range t.Records {
		if r.CaseID == caseID {
			return r, true
		}
	}
	return CaseRecord{}, false
}

// CaseIDs returns the case identifiers in table order
func (t *CaseTable) CaseIDs() []string {
	ids := make([]string, 0, t.Len())
	if t != nil {
		for _, r := range t.Records {
			ids = append(ids, r.CaseID)
		}
	}
	return ids
}

// Exports returns the JSON-safe export objects in table order
func (t *CaseTable) Exports() []CaseExport {
	out := make([]CaseExport, 0, t.Len())
	if t != nil {
		for _, r := range t.Records {
			out = append(out, r.Export())
		}
	}
	return out
}

// ConnectionStatus describes where the current table came from
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnected    ConnectionStatus = "connected"
	StatusDemo         ConnectionStatus = "demo"
)

// ConnectionState holds the validated root and its display-safe name.
// The root path itself stays private to the engine.
type ConnectionState struct {
	root       string
	FolderName string
	Status     ConnectionStatus
}

// NewConnectionState builds a connected state for the given root
func NewConnectionState(root string, status ConnectionStatus) ConnectionState {
	return ConnectionState{
		root:       root,
		FolderName: SanitizeFolderName(root),
		Status:     status,
	}
}

// Root returns the validated root path. Callers must not surface it.
func (c ConnectionState) Root() string { return c.root }

// SanitizeFolderName returns the last path segment of root, or "" when the
// segment still contains separator characters and is unsafe to display.
func SanitizeFolderName(root string) string {
	trimmed := strings.TrimRight(root, "/\\")
	if trimmed == "" {
		return ""
	}
	idx := strings.LastIndexAny(trimmed, "/\\")
	name := trimmed
	if idx >= 0 {
		name = trimmed[idx+1:]
	}
	if name == "" || strings.ContainsAny(name, "/\\:") {
		return ""
	}
	return name
}

// ArtifactStatus is the presence flag plus display label for one artifact
type ArtifactStatus struct {
	Present bool   `json:"present"`
	Label   string `json:"label"`
}

// ArtifactAvailability maps artifact keys to presence flags. Labels are
// sanitized basenames only; full paths never enter this structure.
type ArtifactAvailability struct {
	Artifacts      map[string]ArtifactStatus `json:"artifacts"`
	CaseImageCount int                       `json:"case_image_count"`
}

// Has reports whether the named artifact is present
func (a ArtifactAvailability) Has(key string) bool {
	return a.Artifacts[key].Present
}

// MetricsRow is one row of the optional patient-level metrics summary
type MetricsRow struct {
	Model       string  `json:"model"`
	AUC         float64 `json:"auc"`
	PRAUC       float64 `json:"pr_auc"`
	Sensitivity float64 `json:"sensitivity"`
	Specificity float64 `json:"specificity"`
	Accuracy    float64 `json:"accuracy"`
	F1          float64 `json:"f1"`
}

// RunConfig is the optional run_config.json document. Known fields are
// typed; everything else is kept in Extra for display.
type RunConfig struct {
	Timestamp       string                 `json:"timestamp"`
	NPatients       int                    `json:"n_patients"`
	NPositive       int                    `json:"n_masld"`
	NHealthy        int                    `json:"n_healthy"`
	BatchSize       int                    `json:"batch_size"`
	CNNEpochs       int                    `json:"cnn_epochs"`
	CNNLearningRate float64                `json:"cnn_lr"`
	CalibrationBins int                    `json:"calibration_bins"`
	Extra           map[string]interface{} `json:"-"`
}
