// Package export produces CSV and XLSX exports of processed invoices.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"garagebook/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// invoiceColumns defines the CSV header row for the invoice export.
var invoiceColumns = []string{
	"Invoice Number",
	"Invoice Date",
	"Vehicle ID",
	"Odometer",
	"Total Cost",
	"Parts Cost",
	"Labor Cost",
	"Service Description",
	"Processing Method",
	"Confidence",
	"Line Item Count",
	"Approved",
	"Approved By",
	"Reviewer Notes",
	"Created At",
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(invoiceColumns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func invoiceToRow(inv *domain.Invoice) []string {
	row := make([]string, len(invoiceColumns))
	row[0] = inv.InvoiceNumber
	row[1] = inv.InvoiceDate
	row[2] = inv.VehicleID
	row[3] = strconv.FormatInt(inv.Odometer, 10)
	row[4] = formatAmount(inv.TotalCost)
	row[5] = formatAmount(inv.PartsCost)
	row[6] = formatAmount(inv.LaborCost)
	row[7] = inv.Description
	row[8] = string(inv.Method)
	row[9] = strconv.Itoa(inv.Confidence)
	row[10] = "" // filled by callers that load lines; header-only exports leave it empty
	if inv.Approved != nil {
		row[11] = strconv.FormatBool(*inv.Approved)
		row[12] = inv.ApprovedBy
	}
	row[13] = inv.ReviewerNotes
	row[14] = inv.CreatedAt.UTC().Format(time.RFC3339)
	return row
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// nonAlphanumeric matches characters unsafe in a filename.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// BuildFilename returns a sanitized, timestamped filename for downloads.
func BuildFilename(name, ext string) string {
	base := SanitizeFilename(name)
	if base == "" {
		base = "invoices"
	}
	return fmt.Sprintf("%s_%s.%s", base, time.Now().UTC().Format("20060102_150405"), ext)
}
