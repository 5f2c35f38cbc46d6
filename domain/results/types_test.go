package results

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandForProbability(t *testing.T) {
	tests := []struct {
		p    float64
		want RiskBand
	}{
		{0.0, BandLow},
		{0.29, BandLow},
		{0.30, BandLowMod},
		{0.49, BandLowMod},
		{0.50, BandModerate},
		{0.74, BandModerate},
		{0.75, BandHigh},
		{1.0, BandHigh},
	}
	for _, tt := range tests {
		if got := BandForProbability(tt.p); got != tt.want {
			t.Errorf("BandForProbability(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestNormalizeBand(t *testing.T) {
	tests := []struct {
		raw  string
		want RiskBand
	}{
		{"LOW", BandLow},
		{"low", BandLow},
		{" High ", BandHigh},
		{"Low-Mod", BandLowMod},
		{"LOW_MOD", BandLowMod},
		{"moderate", BandModerate},
		{"", BandUnknown},
		{"CRITICAL", BandUnknown},
	}
	for _, tt := range tests {
		if got := NormalizeBand(tt.raw); got != tt.want {
			t.Errorf("NormalizeBand(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		root string
		want string
	}{
		{"/home/user/results_2024", "results_2024"},
		{"results", "results"},
		{"/data/run/", "run"},
		{"/", ""},
		{"", ""},
		{`C:\runs\latest`, "latest"},
	}
	for _, tt := range tests {
		if got := SanitizeFolderName(tt.root); got != tt.want {
			t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.root, got, tt.want)
		}
	}
}

func TestCaseRecordJSONNeverCarriesPatientID(t *testing.T) {
	rec := CaseRecord{
		CaseID:         "Case-01",
		PatientID:      "PATIENT-SECRET-999",
		Fold:           1,
		YTrue:          1,
		PCalibrated:    0.8,
		UncertaintyStd: 0.05,
		Band:           BandHigh,
	}

	raw, err := json.Marshal(rec)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "PATIENT-SECRET-999")
	assert.NotContains(t, string(raw), "patient_id")

	raw, err = json.Marshal(rec.Export())
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "PATIENT-SECRET-999")
	assert.NotContains(t, string(raw), "patient_id")
}

func TestCaseTableLookupAndOrder(t *testing.T) {
	table := NewCaseTable([]CaseRecord{
		{CaseID: "Case-03", PCalibrated: 0.9, Band: BandHigh},
		{CaseID: "Case-01", PCalibrated: 0.1, Band: BandLow},
		{CaseID: "Case-02", PCalibrated: 0.4, Band: BandLowMod},
	})

	// Insertion order is preserved, not sorted
	assert.Equal(t, []string{"Case-03", "Case-01", "Case-02"}, table.CaseIDs())

	rec, ok := table.Get("Case-01")
	assert.True(t, ok)
	assert.Equal(t, 0.1, rec.PCalibrated)

	_, ok = table.Get("Case-99")
	assert.False(t, ok)
}

func TestExportsMatchTableOrder(t *testing.T) {
	table := NewCaseTable([]CaseRecord{
		{CaseID: "Case-02", PatientID: "P2"},
		{CaseID: "Case-01", PatientID: "P1"},
	})
	exports := table.Exports()
	assert.Len(t, exports, 2)
	assert.Equal(t, "Case-02", exports[0].CaseID)
	assert.Equal(t, "Case-01", exports[1].CaseID)

	raw, err := json.Marshal(exports)
	assert.NoError(t, err)
	if strings.Contains(string(raw), "P1") || strings.Contains(string(raw), "P2") {
		t.Fatalf("export surface leaked a patient identifier: %s", raw)
	}
}

func TestNilTableIsSafe(t *testing.T) {
	var table *CaseTable
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.CaseIDs())
	assert.Empty(t, table.Exports())
	_, ok := table.Get("Case-01")
	assert.False(t, ok)
}
