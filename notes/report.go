package notes

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// WritePDFReport renders a collector's notes as a one-file-per-directory PDF
// summary: a header, a pass/fail line, and one row per note grouped by
// severity. Grounded on this toolkit's report-generation pattern of laying
// out a fixed set of labeled sections with gofpdf.Cell/Ln rather than a
// template engine.
func (c *Collector) WritePDFReport(dcpPath, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, "DCP Verification Report")
	pdf.Ln(15)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, "Package:")
	pdf.Cell(150, 6, dcpPath)
	pdf.Ln(6)
	pdf.Cell(40, 6, "Generated:")
	pdf.Cell(150, 6, time.Now().Format("2006-01-02 15:04:05"))
	pdf.Ln(6)
	pdf.Cell(40, 6, "Notes:")
	pdf.Cell(150, 6, fmt.Sprintf("%d", len(c.notes)))
	pdf.Ln(12)

	for _, sev := range []Severity{SeverityError, SeverityBv21Error, SeverityWarning, SeverityInfo} {
		var rows []Note
		for _, n := range c.notes {
			if n.Severity == sev {
				rows = append(rows, n)
			}
		}
		if len(rows) == 0 {
			continue
		}
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(190, 8, fmt.Sprintf("%s (%d)", sev.String(), len(rows)))
		pdf.Ln(9)

		pdf.SetFont("Arial", "", 9)
		for _, n := range rows {
			pdf.MultiCell(190, 5, n.String(), "", "", false)
		}
		pdf.Ln(4)
	}

	return pdf.OutputFileAndClose(outPath)
}

// WriteXLSXReport renders a collector's notes as a spreadsheet: a summary
// sheet with per-severity counts and a "Notes" sheet with one row per
// finding. Grounded on this toolkit's excelize spreadsheet-report pattern
// (a styled summary sheet plus a data sheet, built with SetCellValue and
// NewStyle rather than a template).
func (c *Collector) WriteXLSXReport(dcpPath, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	f.SetCellValue(summary, "A1", "Package")
	f.SetCellValue(summary, "B1", dcpPath)
	f.SetCellValue(summary, "A2", "Generated")
	f.SetCellValue(summary, "B2", time.Now().Format("2006-01-02 15:04:05"))
	f.SetCellValue(summary, "A3", "Total Notes")
	f.SetCellValue(summary, "B3", len(c.notes))

	row := 4
	for code, count := range c.CountByCode() {
		f.SetCellValue(summary, fmt.Sprintf("A%d", row), code)
		f.SetCellValue(summary, fmt.Sprintf("B%d", row), count)
		row++
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetCellStyle(summary, "A1", "A3", style)
	}

	const notesSheet = "Notes"
	f.NewSheet(notesSheet)
	f.SetCellValue(notesSheet, "A1", "Severity")
	f.SetCellValue(notesSheet, "B1", "Code")
	f.SetCellValue(notesSheet, "C1", "Message")
	f.SetCellValue(notesSheet, "D1", "Path")
	f.SetCellValue(notesSheet, "E1", "Line")
	if err == nil {
		f.SetCellStyle(notesSheet, "A1", "E1", style)
	}

	for i, n := range c.notes {
		r := i + 2
		f.SetCellValue(notesSheet, fmt.Sprintf("A%d", r), n.Severity.String())
		f.SetCellValue(notesSheet, fmt.Sprintf("B%d", r), n.Code)
		f.SetCellValue(notesSheet, fmt.Sprintf("C%d", r), n.Message)
		f.SetCellValue(notesSheet, fmt.Sprintf("D%d", r), n.Path)
		if n.Line != nil {
			f.SetCellValue(notesSheet, fmt.Sprintf("E%d", r), *n.Line)
		}
	}

	return f.SaveAs(outPath)
}
