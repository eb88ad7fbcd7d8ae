package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"garagebook/internal/domain"
	"garagebook/internal/export"
	"garagebook/internal/service"
)

// InvoiceHandler handles invoice processing and review endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

type processResponse struct {
	Invoice *domain.Invoice          `json:"invoice"`
	Result  *domain.ProcessingResult `json:"result"`
}

// Process handles POST /api/v1/invoices/process. It accepts a raw OCR
// extraction, runs the understanding pipeline, and persists the outcome.
func (h *InvoiceHandler) Process(c *gin.Context) {
	var raw domain.RawExtraction
	if err := c.ShouldBindJSON(&raw); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be a raw extraction object")
		return
	}

	inv, result, err := h.invoiceService.ProcessExtraction(c.Request.Context(), &raw, "")
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, processResponse{Invoice: inv, Result: result})
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

type invoiceDetail struct {
	*domain.Invoice
	Lines []domain.InvoiceLine `json:"line_items"`
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, lines, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoiceDetail{Invoice: inv, Lines: lines})
}

// SetApproval handles POST /api/v1/invoices/:id/approval
func (h *InvoiceHandler) SetApproval(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req struct {
		Approved      *bool  `json:"approved" binding:"required"`
		ApprovedBy    string `json:"approved_by" binding:"required"`
		ReviewerNotes string `json:"reviewer_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "approved and approved_by are required")
		return
	}

	inv, err := h.invoiceService.SetApproval(c.Request.Context(), &service.ApprovalInput{
		InvoiceID:     id,
		Approved:      *req.Approved,
		ApprovedBy:    req.ApprovedBy,
		ReviewerNotes: req.ReviewerNotes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// ExportXLSX handles GET /api/v1/invoices/:id/export
func (h *InvoiceHandler) ExportXLSX(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, lines, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	data, err := export.BuildInvoiceXLSX(inv, lines)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("invoice_"+inv.InvoiceNumber, "xlsx")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportCSV handles GET /api/v1/invoices/export/csv
func (h *InvoiceHandler) ExportCSV(c *gin.Context) {
	// Pull everything in one page; invoice volume is small per shop.
	invoices, _, err := h.invoiceService.List(c.Request.Context(), 0, 100)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("invoices", "csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}
	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return
	}
	w.Flush()
}
