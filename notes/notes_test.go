package notes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorHasSeverity(t *testing.T) {
	c := NewCollector()
	c.Add(Note{Code: "X", Severity: SeverityWarning, Message: "a warning"})

	assert.False(t, c.HasSeverity(SeverityError))
	assert.True(t, c.HasSeverity(SeverityWarning))
}

func TestCollectorCountByCode(t *testing.T) {
	c := NewCollector()
	c.Add(Note{Code: "X", Severity: SeverityWarning})
	c.Add(Note{Code: "X", Severity: SeverityError})
	c.Add(Note{Code: "Y", Severity: SeverityInfo})

	counts := c.CountByCode()
	assert.Equal(t, 2, counts["X"])
	assert.Equal(t, 1, counts["Y"])
}

func TestNoteString(t *testing.T) {
	n := Note{Code: "X", Severity: SeverityError, Message: "broke", Path: "cpl.xml", Line: Line(3)}
	assert.Equal(t, "[error] X: broke (cpl.xml:3)", n.String())
}

func TestWritePDFAndXLSXReports(t *testing.T) {
	c := NewCollector()
	c.Add(Note{Code: "MISSING_HASH", Severity: SeverityWarning, Message: "no hash recorded", Path: "sound.mxf"})
	c.Add(Note{Code: "INVALID_STANDARD", Severity: SeverityBv21Error, Message: "package is not SMPTE"})

	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "report.pdf")
	require.NoError(t, c.WritePDFReport("/packages/example", pdfPath))
	info, err := os.Stat(pdfPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	xlsxPath := filepath.Join(dir, "report.xlsx")
	require.NoError(t, c.WriteXLSXReport("/packages/example", xlsxPath))
	info, err = os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRecordMetricsDoesNotPanic(t *testing.T) {
	c := NewCollector()
	c.Add(Note{Code: "MISSING_HASH", Severity: SeverityWarning})
	assert.NotPanics(t, func() { c.RecordMetrics("pass", 0.25) })
}
