// pkg/ingest/excel.go

package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/mayursurani/datapipe/pkg/model"
)

// ExcelSource reads one sheet of a workbook into a table.
type ExcelSource struct {
	name  string
	path  string
	sheet string // empty means the first sheet
}

// NewExcelSource creates an Excel source.
func NewExcelSource(name, path, sheet string) (*ExcelSource, error) {
	if path == "" {
		return nil, errors.New("excel path is required")
	}
	if name == "" {
		name = tableNameFromPath(path)
	}
	return &ExcelSource{name: name, path: path, sheet: sheet}, nil
}

// Name identifies the source.
func (s *ExcelSource) Name() string { return s.name }

// Fetch reads the configured sheet into a table.
func (s *ExcelSource) Fetch(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadExcel(s.path, s.sheet, s.name)
}

// ReadExcel reads one sheet of a workbook. An empty sheet name selects the
// first sheet.
func ReadExcel(path, sheet, tableName string) (*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	if tableName == "" {
		tableName = tableNameFromPath(path)
	}

	return sheetToTable(f, sheet, tableName)
}

// ReadAllSheets reads every sheet of a workbook into its own table, keyed
// by sheet name.
func ReadAllSheets(path string) (map[string]*model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file %s: %w", path, err)
	}
	defer f.Close()

	tables := make(map[string]*model.Table)
	for _, sheet := range f.GetSheetList() {
		tbl, err := sheetToTable(f, sheet, sheet)
		if err != nil {
			return nil, err
		}
		tables[sheet] = tbl
	}
	return tables, nil
}

// WriteExcel writes tables to a workbook, one sheet per table named after
// the table.
func WriteExcel(path string, tables ...*model.Table) error {
	if len(tables) == 0 {
		return errors.New("at least one table is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, tbl := range tables {
		sheet := tbl.Name
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename default sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}

		columns := tbl.ColumnNames()
		for col, name := range columns {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, name); err != nil {
				return fmt.Errorf("failed to write header cell: %w", err)
			}
		}

		for rowIdx, row := range tbl.Rows {
			for col, name := range columns {
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				if err != nil {
					return fmt.Errorf("failed to compute cell name: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, row[name]); err != nil {
					return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file %s: %w", path, err)
	}
	return nil
}

func sheetToTable(f *excelize.File, sheet, tableName string) (*model.Table, error) {
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(raw) == 0 {
		return model.NewTable(tableName, nil, nil), nil
	}

	header := raw[0]
	var rows []model.Record
	for _, record := range raw[1:] {
		rows = append(rows, recordFromStrings(header, record))
	}
	return model.NewTable(tableName, header, rows), nil
}
