package annualreturn

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Annual Return"

var exportHeader = []string{"Code", "Section", "Label", "Value", "Source"}

// Filename is the suggested download name for an export
func (ar *AnnualReturn) Filename(ext string) string {
	number := ar.Organization.CharityNumber
	if number == "" {
		number = ar.Organization.ID.String()
	}
	return fmt.Sprintf("annual-return-%s-%d.%s", number, ar.FinancialYear, ext)
}

// WriteXLSX writes the field table as a single-sheet workbook
func WriteXLSX(w io.Writer, ar *AnnualReturn) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	rows := [][]any{
		{"Charity", ar.Organization.Name},
		{"Charity number", ar.Organization.CharityNumber},
		{"Financial year", ar.FinancialYear},
		{"Generated", ar.GeneratedAt.Format("2006-01-02 15:04 MST")},
		{},
	}
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	rows = append(rows, header)
	headerRow := len(rows)

	for _, field := range ar.Fields {
		rows = append(rows, []any{field.Code, field.Section, field.Label, field.Display(), string(field.Source)})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("E%d", headerRow), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", "A", 34); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "C", "D", 48); err != nil {
		return err
	}

	return f.Write(w)
}

// WriteCSV writes the field table as CSV with a header row
func WriteCSV(w io.Writer, ar *AnnualReturn) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, field := range ar.Fields {
		if err := cw.Write([]string{field.Code, field.Section, field.Label, field.Display(), string(field.Source)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
