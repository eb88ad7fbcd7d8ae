package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"garagebook/internal/domain"
)

func TestBuildInvoiceXLSX(t *testing.T) {
	inv := sampleInvoice()
	lines := []domain.InvoiceLine{
		{ProcessedLineItem: domain.ProcessedLineItem{
			LineNumber:       1,
			Description:      "Oil filter PH7317",
			UnitCost:         8.99,
			Quantity:         1,
			TotalCost:        8.99,
			Classification:   domain.ClassPart,
			Confidence:       90,
			PartNumber:       "PH7317",
			ExtractionMethod: domain.ExtractDescriptionParsed,
		}},
		{ProcessedLineItem: domain.ProcessedLineItem{
			LineNumber:       2,
			Description:      "Labor - oil change",
			TotalCost:        45,
			Classification: domain.ClassLabor,
			Confidence:     88,
		}},
	}

	data, err := BuildInvoiceXLSX(&inv, lines)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Invoice", "Line Items"}, f.GetSheetList())

	num, err := f.GetCellValue("Invoice", "B1")
	require.NoError(t, err)
	assert.Equal(t, "4512", num)

	method, err := f.GetCellValue("Invoice", "B9")
	require.NoError(t, err)
	assert.Equal(t, "ai-enhanced", method)

	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Line #", rows[0][0])
	assert.Equal(t, "Oil filter PH7317", rows[1][1])
	assert.Equal(t, "PH7317", rows[1][7])
	assert.Equal(t, "Labor", rows[2][5])
}

func TestBuildInvoiceXLSX_NoLines(t *testing.T) {
	inv := sampleInvoice()

	data, err := BuildInvoiceXLSX(&inv, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}
