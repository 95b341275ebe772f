package historyexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"medlens/internal/domain"
)

const (
	analysesSheet     = "Analyses"
	alternativesSheet = "Generic Alternatives"
)

var alternativeColumns = []string{
	"Analysis ID",
	"Branded Name",
	"Generic Name",
	"Approx. Branded Price",
	"Approx. Generic Price",
	"Savings",
}

func writeXLSX(w io.Writer, history []domain.MedicalAnalysis) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", analysesSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(alternativesSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeRow(f, analysesSheet, 1, columns); err != nil {
		return err
	}
	if err := writeRow(f, alternativesSheet, 1, alternativeColumns); err != nil {
		return err
	}
	for _, sheet := range []struct {
		name string
		cols int
	}{{analysesSheet, len(columns)}, {alternativesSheet, len(alternativeColumns)}} {
		last, err := excelize.CoordinatesToCellName(sheet.cols, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.name, "A1", last, header); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}
	if err := f.SetColWidth(analysesSheet, "D", "D", 60); err != nil {
		return err
	}

	altRow := 2
	for i := range history {
		a := &history[i]
		if err := writeRow(f, analysesSheet, i+2, analysisToRow(a)); err != nil {
			return err
		}
		alts, ok := a.GenericAlternatives.Get()
		if !ok {
			continue
		}
		for _, g := range alts {
			row := []string{a.ID, g.BrandedName, g.GenericName, g.ApproxBrandedPrice, g.ApproxGenericPrice, g.SavingsPercentage}
			if err := writeRow(f, alternativesSheet, altRow, row); err != nil {
				return err
			}
			altRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
