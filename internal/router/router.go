package router

import (
	"github.com/gin-gonic/gin"

	"garagebook/internal/handler"
	"garagebook/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	invoiceH *handler.InvoiceHandler,
	uploadH *handler.UploadHandler,
	ruleH *handler.RuleHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Invoice routes
	invoices := v1.Group("/invoices")
	invoices.POST("/process", invoiceH.Process)
	invoices.GET("", invoiceH.List)
	invoices.GET("/export/csv", invoiceH.ExportCSV)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.POST("/:id/approval", invoiceH.SetApproval)
	invoices.GET("/:id/export", invoiceH.ExportXLSX)

	// Scanned file uploads
	uploads := v1.Group("/uploads")
	uploads.POST("", uploadH.Upload)
	uploads.GET("/:id", uploadH.GetByID)

	// Rule dictionaries
	rules := v1.Group("/rules")
	rules.GET("/keywords", ruleH.ListKeywordRules)
	rules.GET("/fields", ruleH.ListFieldMappingRules)

	return r
}
