package resultstore

import (
	"path/filepath"

	"caseview/internal/errors"
)

// Validate checks that the required files and index columns are present.
// It returns nil on success, a MISSING_FILE error naming the absent files,
// a MISSING_COLUMN error naming the absent columns, or UNREADABLE_FILE when
// the index exists but cannot be parsed. It never panics on corrupt input
// and has no side effects beyond read access.
func (s *Store) Validate() error {
	var missing []string

	indexPath, indexOK := s.indexPath()
	if !indexOK {
		missing = append(missing, filepath.Join(ReportsDir, IndexFileCSV))
	}
	if !fileExists(s.path(ReportsDir, MappingFile)) {
		missing = append(missing, filepath.Join(ReportsDir, MappingFile))
	}
	if len(missing) > 0 {
		return errors.MissingFile(missing...)
	}

	table, err := ReadTable(indexPath)
	if err != nil {
		return err
	}

	var absent []string
	for _, col := range RequiredColumns {
		if !table.HasColumn(col) {
			absent = append(absent, col)
		}
	}
	if len(absent) > 0 {
		return errors.MissingColumn(absent...)
	}
	return nil
}
