// Package spreadsheet exports a product's variation grid to xlsx and reads
// edited sheets back into grid rows.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"variations-service/internal/models"
	"variations-service/internal/variations"
)

const (
	SheetName         = "Variations"
	InstructionsSheet = "Instructions"

	priceHeader    = "price"
	quantityHeader = "quantity"
)

// ErrInvalidSheet is returned when the workbook cannot be mapped onto the
// product's variation types
var ErrInvalidSheet = errors.New("invalid variation sheet")

// Sheet is the parsed content of an uploaded variation sheet
type Sheet struct {
	Rows       []models.VariationRow
	RowNumbers []int // spreadsheet row of each entry in Rows
	TotalRows  int
	Errors     []models.ImportRowError
}

// WriteVariationSheet writes one line per grid row: the option name for
// every axis, then price and quantity
func WriteVariationSheet(w io.Writer, axes []models.VariationType, rows []variations.PricedCombination) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	headers := make([]string, 0, len(axes)+2)
	for _, axis := range axes {
		headers = append(headers, axis.Name)
	}
	for _, col := range models.VariationSheetColumns() {
		headers = append(headers, col.Name)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, header)
		f.SetCellStyle(SheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(SheetName, colName, colName, 20)
	}

	priceCol := len(axes) + 1
	quantityCol := len(axes) + 2
	for r, row := range rows {
		line := r + 2
		for a, axis := range axes {
			choice, ok := row.Choice(axis.ID)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(a+1, line)
			f.SetCellValue(SheetName, cell, choice.OptionName)
		}

		cell, _ := excelize.CoordinatesToCellName(priceCol, line)
		if row.Price == nil {
			f.SetCellValue(SheetName, cell, models.SheetDefaultPrice)
		} else {
			f.SetCellFloat(SheetName, cell, row.Price.InexactFloat64(), 2, 64)
		}

		cell, _ = excelize.CoordinatesToCellName(quantityCol, line)
		if row.Quantity == nil {
			f.SetCellValue(SheetName, cell, models.SheetUnlimitedQuantity)
		} else {
			f.SetCellInt(SheetName, cell, int64(*row.Quantity))
		}
	}

	writeInstructions(f, axes)

	sheetIdx, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(sheetIdx)

	_, err := f.WriteTo(w)
	return err
}

func writeInstructions(f *excelize.File, axes []models.VariationType) {
	f.NewSheet(InstructionsSheet)
	f.SetCellValue(InstructionsSheet, "A1", "Variation Sheet Instructions")
	f.SetCellValue(InstructionsSheet, "A3", "Each row prices one combination of options. Option cells hold option names.")
	f.SetCellValue(InstructionsSheet, "A4", "Rows with an unknown option, or repeating an earlier combination, are skipped.")

	f.SetCellValue(InstructionsSheet, "A6", "Column")
	f.SetCellValue(InstructionsSheet, "B6", "Description")
	f.SetCellValue(InstructionsSheet, "C6", "Type")
	f.SetCellValue(InstructionsSheet, "D6", "Example")

	line := 7
	for _, axis := range axes {
		names := make([]string, len(axis.Options))
		for i, option := range axis.Options {
			names[i] = option.Name
		}
		f.SetCellValue(InstructionsSheet, fmt.Sprintf("A%d", line), axis.Name)
		f.SetCellValue(InstructionsSheet, fmt.Sprintf("B%d", line), "One of: "+strings.Join(names, ", "))
		f.SetCellValue(InstructionsSheet, fmt.Sprintf("C%d", line), "string")
		if len(names) > 0 {
			f.SetCellValue(InstructionsSheet, fmt.Sprintf("D%d", line), names[0])
		}
		line++
	}
	for _, col := range models.VariationSheetColumns() {
		f.SetCellValue(InstructionsSheet, fmt.Sprintf("A%d", line), col.Name)
		f.SetCellValue(InstructionsSheet, fmt.Sprintf("B%d", line), col.Description)
		f.SetCellValue(InstructionsSheet, fmt.Sprintf("C%d", line), col.Type)
		f.SetCellValue(InstructionsSheet, fmt.Sprintf("D%d", line), col.Example)
		line++
	}

	f.SetColWidth(InstructionsSheet, "A", "A", 25)
	f.SetColWidth(InstructionsSheet, "B", "B", 70)
	f.SetColWidth(InstructionsSheet, "C", "C", 15)
	f.SetColWidth(InstructionsSheet, "D", "D", 20)
}

// ReadVariationSheet parses an uploaded workbook against the product's axes.
// Option cells become name-only references. An empty price or quantity cell
// is left absent; the "default" and "unlimited" markers become explicit nulls.
// Rows with unparseable numbers are reported in Sheet.Errors and left out.
func ReadVariationSheet(r io.Reader, axes []models.VariationType) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrInvalidSheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found", ErrInvalidSheet)
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, SheetName) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet: %v", ErrInvalidSheet, err)
	}
	if len(excelRows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrInvalidSheet)
	}

	// Each header column is claimed once, axes first, so an axis named like a
	// fixed column or like another axis still maps to its own column
	columns := make(map[string][]int, len(excelRows[0]))
	for i, header := range excelRows[0] {
		if key := HeaderKey(header); key != "" {
			columns[key] = append(columns[key], i)
		}
	}
	claim := func(name string) (int, bool) {
		key := HeaderKey(name)
		cols := columns[key]
		if len(cols) == 0 {
			return 0, false
		}
		columns[key] = cols[1:]
		return cols[0], true
	}

	axisColumns := make([]int, len(axes))
	for a, axis := range axes {
		col, ok := claim(axis.Name)
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidSheet, axis.Name)
		}
		axisColumns[a] = col
	}
	priceCol, hasPrice := claim(priceHeader)
	quantityCol, hasQuantity := claim(quantityHeader)

	sheet := &Sheet{}
	for idx, excelRow := range excelRows[1:] {
		line := idx + 2
		if blankRow(excelRow) {
			continue
		}
		sheet.TotalRows++

		row := models.VariationRow{Options: make(map[uuid.UUID]models.OptionRef, len(axes))}
		for a, axis := range axes {
			if name := cellAt(excelRow, axisColumns[a]); name != "" {
				row.Options[axis.ID] = models.OptionRef{Name: name}
			}
		}

		valid := true
		if hasPrice {
			price, err := parsePrice(cellAt(excelRow, priceCol))
			if err != nil {
				sheet.Errors = append(sheet.Errors, models.ImportRowError{
					Row: line, Column: "Price", Code: "INVALID_PRICE", Message: err.Error(),
				})
				valid = false
			}
			row.Price = price
		}
		if hasQuantity {
			quantity, err := parseQuantity(cellAt(excelRow, quantityCol))
			if err != nil {
				sheet.Errors = append(sheet.Errors, models.ImportRowError{
					Row: line, Column: "Quantity", Code: "INVALID_QUANTITY", Message: err.Error(),
				})
				valid = false
			}
			row.Quantity = quantity
		}

		if valid {
			sheet.Rows = append(sheet.Rows, row)
			sheet.RowNumbers = append(sheet.RowNumbers, line)
		}
	}
	return sheet, nil
}

func parsePrice(cell string) (models.NullableDecimal, error) {
	switch {
	case cell == "":
		return models.NullableDecimal{}, nil
	case strings.EqualFold(cell, models.SheetDefaultPrice):
		return models.DecimalNull(), nil
	}
	price, err := decimal.NewFromString(cell)
	if err != nil {
		return models.NullableDecimal{}, fmt.Errorf("invalid price %q", cell)
	}
	if price.IsNegative() {
		return models.NullableDecimal{}, fmt.Errorf("price cannot be negative: %s", cell)
	}
	return models.DecimalValue(price), nil
}

func parseQuantity(cell string) (models.NullableInt, error) {
	switch {
	case cell == "":
		return models.NullableInt{}, nil
	case strings.EqualFold(cell, models.SheetUnlimitedQuantity):
		return models.IntNull(), nil
	}
	quantity, err := strconv.Atoi(cell)
	if err != nil {
		return models.NullableInt{}, fmt.Errorf("invalid quantity %q", cell)
	}
	if quantity < 0 {
		return models.NullableInt{}, fmt.Errorf("quantity cannot be negative: %d", quantity)
	}
	return models.IntValue(quantity), nil
}

// HeaderKey is the case-insensitive key a column header is matched by
func HeaderKey(header string) string {
	header = strings.TrimSpace(strings.ToLower(header))
	return strings.TrimSpace(strings.TrimSuffix(header, " *"))
}

// ReservedHeader reports whether name collides with a fixed column
func ReservedHeader(name string) bool {
	key := HeaderKey(name)
	return key == priceHeader || key == quantityHeader
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
