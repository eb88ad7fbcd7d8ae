package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"garagebook/internal/service"
)

// UploadHandler handles scanned invoice file uploads.
type UploadHandler struct {
	invoiceService service.InvoiceService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(invoiceService service.InvoiceService) *UploadHandler {
	return &UploadHandler{invoiceService: invoiceService}
}

// Upload handles POST /api/v1/uploads. The file is stored and queued; the
// process queue worker picks it up for OCR and classification.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart file field 'file' is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read uploaded file")
		return
	}
	defer file.Close()

	up, err := h.invoiceService.UploadInvoice(c.Request.Context(), &service.UploadInvoiceInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, up)
}

// GetByID handles GET /api/v1/uploads/:id for polling processing status.
func (h *UploadHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid upload ID")
		return
	}

	up, err := h.invoiceService.GetUpload(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, up)
}
