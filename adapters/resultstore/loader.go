package resultstore

import (
	"fmt"
	"strconv"

	"caseview/domain/results"
	"caseview/internal/errors"
)

// Load parses the case index into a CaseTable. Callers are expected to run
// Validate first; Load repeats the file-level checks but trusts the column
// set. Row-level problems are recovered, not propagated: unparsable rows
// are dropped with a warning and duplicates keep their first occurrence.
// Source file order is preserved.
func (s *Store) Load() (*results.CaseTable, error) {
	indexPath, ok := s.indexPath()
	if !ok {
		return nil, errors.MissingFile(ReportsDir + "/" + IndexFileCSV)
	}

	table, err := ReadTable(indexPath)
	if err != nil {
		return nil, err
	}

	records := make([]results.CaseRecord, 0, len(table.Rows))
	seen := make(map[string]bool, len(table.Rows))
	info := results.LoadInfo{}

	for i, row := range table.Rows {
		record, err := parseCaseRow(row)
		if err != nil {
			info.RowsDropped++
			s.logger.Warn("dropping index row %d: %v", i+1, err)
			continue
		}
		if seen[record.CaseID] {
			info.DuplicatesSeen++
			s.logger.Warn("duplicate case_id %s at row %d, keeping first occurrence", record.CaseID, i+1)
			continue
		}
		seen[record.CaseID] = true
		record.HasImage = fileExists(s.path(ReportsDir, record.CaseID+".png"))
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, errors.NoData("case index contains no usable rows")
	}

	// The mapping file can legitimately cover more patients than the index
	// has reports for. The difference is informational only.
	info.MappingRows = s.countMappingRows()
	if info.MappingRows > 0 && info.MappingRows != len(records) {
		s.logger.Info("case index has %d rows, mapping file has %d", len(records), info.MappingRows)
	}

	out := results.NewCaseTable(records)
	out.Info = info
	return out, nil
}

func parseCaseRow(row RawRow) (results.CaseRecord, error) {
	var rec results.CaseRecord

	caseID := row["case_id"]
	if caseID == "" {
		return rec, fmt.Errorf("empty case_id")
	}

	p, err := strconv.ParseFloat(row["p_calibrated"], 64)
	if err != nil {
		return rec, fmt.Errorf("unparsable p_calibrated %q", row["p_calibrated"])
	}
	if p < 0 || p > 1 {
		return rec, fmt.Errorf("p_calibrated %v out of range", p)
	}

	uncert, err := strconv.ParseFloat(row["uncertainty_std"], 64)
	if err != nil {
		return rec, fmt.Errorf("unparsable uncertainty_std %q", row["uncertainty_std"])
	}
	if uncert < 0 {
		return rec, fmt.Errorf("negative uncertainty_std %v", uncert)
	}

	fold, err := strconv.Atoi(row["fold"])
	if err != nil {
		return rec, fmt.Errorf("unparsable fold %q", row["fold"])
	}

	yTrue, err := strconv.Atoi(row["y_true"])
	if err != nil || (yTrue != 0 && yTrue != 1) {
		return rec, fmt.Errorf("unparsable y_true %q", row["y_true"])
	}

	rec = results.CaseRecord{
		CaseID:         caseID,
		PatientID:      row["patient_id"],
		Fold:           fold,
		YTrue:          yTrue,
		PCalibrated:    p,
		UncertaintyStd: uncert,
		Band:           results.NormalizeBand(row["risk_band"]),
	}
	return rec, nil
}

// countMappingRows counts data rows in the mapping file. Patient ids from
// the mapping are never retained; only the row count is.
func (s *Store) countMappingRows() int {
	table, err := ReadTable(s.path(ReportsDir, MappingFile))
	if err != nil {
		s.logger.Warn("mapping file unreadable: %v", err)
		return 0
	}
	return len(table.Rows)
}
