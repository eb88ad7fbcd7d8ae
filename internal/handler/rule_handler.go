package handler

import (
	"github.com/gin-gonic/gin"

	"garagebook/internal/port"
)

// RuleHandler exposes the classification and field-mapping dictionaries.
type RuleHandler struct {
	ruleRepo port.RuleRepository
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleRepo port.RuleRepository) *RuleHandler {
	return &RuleHandler{ruleRepo: ruleRepo}
}

// ListKeywordRules handles GET /api/v1/rules/keywords
func (h *RuleHandler) ListKeywordRules(c *gin.Context) {
	rules, err := h.ruleRepo.ListKeywordRules(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rules)
}

// ListFieldMappingRules handles GET /api/v1/rules/fields
func (h *RuleHandler) ListFieldMappingRules(c *gin.Context) {
	rules, err := h.ruleRepo.ListFieldMappingRules(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rules)
}
