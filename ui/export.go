package ui

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"caseview/domain/results"
)

// exportHeaders mirrors the per-case export object. patient_id is not a
// column here and must never become one.
var exportHeaders = []interface{}{"case_id", "risk_band", "p_calibrated", "uncertainty_std", "y_true", "fold"}

// handleExportXLSX streams the session-filtered table as a workbook
func (a *App) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap := a.service.Snapshot()
	filtered, _ := results.Apply(snap.Table, a.sessions.Filters(r))

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Cases"
	f.SetSheetName("Sheet1", sheet)
	if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	for i, rec := range filtered.Exports() {
		row := []interface{}{rec.CaseID, string(rec.Band), rec.PCalibrated, rec.UncertaintyStd, rec.YTrue, rec.Fold}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="caseview_export.xlsx"`)
	if _, err := f.WriteTo(w); err != nil {
		a.logger.Error("xlsx export write: %v", err)
	}
}
