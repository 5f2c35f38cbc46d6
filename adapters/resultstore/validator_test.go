package resultstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caseview/internal/errors"
)

const fixtureHeader = "case_id,patient_id,fold,y_true,p_calibrated,uncertainty_std,risk_band\n"

func writeFixture(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeMinimalResults lays down a valid folder with the two required files
func writeMinimalResults(t *testing.T, root string, indexRows string) {
	t.Helper()
	writeFixture(t, root, filepath.Join(ReportsDir, IndexFileCSV), fixtureHeader+indexRows)
	writeFixture(t, root, filepath.Join(ReportsDir, MappingFile), "case_id,patient_id\nCase-01,P-01\n")
}

func TestValidateOK(t *testing.T) {
	root := t.TempDir()
	writeMinimalResults(t, root, "Case-01,P-01,0,1,0.8,0.05,HIGH\n")

	assert.NoError(t, NewStore(root).Validate())
}

func TestValidateMissingFiles(t *testing.T) {
	root := t.TempDir()

	err := NewStore(root).Validate()
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingFile, errors.GetCode(err))

	appErr := err.(*errors.AppError)
	assert.Len(t, appErr.Details, 2)
	assert.Contains(t, appErr.Details, filepath.Join(ReportsDir, IndexFileCSV))
	assert.Contains(t, appErr.Details, filepath.Join(ReportsDir, MappingFile))
	// Details are relative display names, not absolute paths
	for _, d := range appErr.Details {
		assert.False(t, filepath.IsAbs(d))
	}
}

func TestValidateMissingOneFile(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, filepath.Join(ReportsDir, IndexFileCSV), fixtureHeader)

	err := NewStore(root).Validate()
	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, []string{filepath.Join(ReportsDir, MappingFile)}, appErr.Details)
}

func TestValidateMissingColumns(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, filepath.Join(ReportsDir, IndexFileCSV), "case_id,fold,y_true\nCase-01,0,1\n")
	writeFixture(t, root, filepath.Join(ReportsDir, MappingFile), "case_id,patient_id\n")

	err := NewStore(root).Validate()
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))

	appErr := err.(*errors.AppError)
	assert.ElementsMatch(t, []string{"patient_id", "p_calibrated", "uncertainty_std", "risk_band"}, appErr.Details)
}

func TestValidateCorruptIndexIsUnreadableNotPanic(t *testing.T) {
	root := t.TempDir()
	// Unbalanced quote makes the csv reader fail partway through
	writeFixture(t, root, filepath.Join(ReportsDir, IndexFileCSV), "case_id,\"patient_id\nbroken\"row,\"\n\"")
	writeFixture(t, root, filepath.Join(ReportsDir, MappingFile), "case_id,patient_id\n")

	err := NewStore(root).Validate()
	if err != nil {
		code := errors.GetCode(err)
		assert.Contains(t, []string{errors.CodeUnreadableFile, errors.CodeMissingColumn}, code)
	}
}

func TestValidateAcceptsXLSXIndexVariant(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, filepath.Join(ReportsDir, MappingFile), "case_id,patient_id\n")
	writeXLSXIndex(t, root, [][]interface{}{
		{"case_id", "patient_id", "fold", "y_true", "p_calibrated", "uncertainty_std", "risk_band"},
		{"Case-01", "P-01", 0, 1, 0.8, 0.05, "HIGH"},
	})

	assert.NoError(t, NewStore(root).Validate())
}
