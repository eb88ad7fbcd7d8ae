package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"garagebook/internal/domain"
)

const (
	sheetInvoice = "Invoice"
	sheetLines   = "Line Items"
)

var lineHeaders = []string{
	"Line #",
	"Description",
	"Unit Cost",
	"Quantity",
	"Line Total",
	"Classification",
	"Confidence",
	"Part Number",
	"Extraction Method",
}

// BuildInvoiceXLSX returns an XLSX workbook (as bytes) with one sheet for the
// invoice header and one for its classified line items.
func BuildInvoiceXLSX(inv *domain.Invoice, lines []domain.InvoiceLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetInvoice); err != nil {
		return nil, fmt.Errorf("export.BuildInvoiceXLSX: renaming sheet: %w", err)
	}

	headerRows := [][2]interface{}{
		{"Invoice Number", inv.InvoiceNumber},
		{"Invoice Date", inv.InvoiceDate},
		{"Vehicle ID", inv.VehicleID},
		{"Odometer", inv.Odometer},
		{"Total Cost", inv.TotalCost},
		{"Parts Cost", inv.PartsCost},
		{"Labor Cost", inv.LaborCost},
		{"Service Description", inv.Description},
		{"Processing Method", string(inv.Method)},
		{"Confidence", inv.Confidence},
	}
	for i, kv := range headerRows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheetInvoice, labelCell, kv[0])
		_ = f.SetCellValue(sheetInvoice, valueCell, kv[1])
	}

	if _, err := f.NewSheet(sheetLines); err != nil {
		return nil, fmt.Errorf("export.BuildInvoiceXLSX: creating lines sheet: %w", err)
	}
	for i, h := range lineHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetLines, cell, h)
	}

	row := 2
	for i := range lines {
		li := &lines[i]
		write := func(col int, v interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetLines, cell, v)
		}
		write(1, li.LineNumber)
		write(2, li.Description)
		write(3, li.UnitCost)
		write(4, li.Quantity)
		write(5, li.TotalCost)
		write(6, string(li.Classification))
		write(7, li.Confidence)
		write(8, li.PartNumber)
		write(9, string(li.ExtractionMethod))
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export.BuildInvoiceXLSX: writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
