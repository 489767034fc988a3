package handler

import (
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/pagination"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	taxService service.TaxService
}

func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func (h *TaxHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/tax/calculate", h.Calculate)

	tax := router.Group("/api/tax-rules")
	{
		tax.GET("", middleware.RequirePermission("tax_rules.read"), h.ListTaxRules)
		tax.GET("/:id", middleware.RequirePermission("tax_rules.read"), h.GetTaxRule)
		tax.POST("/preview", middleware.RequirePermission("tax_rules.read"), h.Preview)
		tax.POST("", middleware.RequirePermission("tax_rules.write"), h.CreateTaxRule)
		tax.PUT("/:id", middleware.RequirePermission("tax_rules.write"), h.UpdateTaxRule)
		tax.DELETE("/:id", middleware.RequirePermission("tax_rules.write"), h.DeleteTaxRule)
	}
}

// Calculate returns the applicable taxes for an order context
// @Summary      Calculate tax
// @Description  Matches active tax rules against the order context and sums their rates. Falls back to the flat tax_rate setting when no active rule exists.
// @Tags         tax
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TaxCalculationRequest  true  "Order context"
// @Success      200      {object}  response.Response{data=service.TaxCalculationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tax/calculate [post]
func (h *TaxHandler) Calculate(c *gin.Context) {
	var req service.TaxCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.taxService.Calculate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListTaxRules returns tax rules ordered by priority
// @Summary      List tax rules
// @Tags         tax
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active rules"
// @Param        page    query     int   false  "Page number (default 1)"
// @Param        limit   query     int   false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]model.TaxRule}
// @Router       /api/tax-rules [get]
func (h *TaxHandler) ListTaxRules(c *gin.Context) {
	p := pagination.Parse(c)
	rules, total, err := h.taxService.ListTaxRules(c.Request.Context(), c.Query("active") == "true", p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rules, p.Page, p.Limit, total))
}

func (h *TaxHandler) GetTaxRule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	rule, err := h.taxService.GetTaxRule(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// Preview explains which predicates each rule passes or fails for an order context
// @Summary      Preview tax rule matching
// @Tags         tax
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TaxCalculationRequest  true  "Order context"
// @Success      200      {object}  response.Response{data=[]service.RulePreview}
// @Router       /api/tax-rules/preview [post]
func (h *TaxHandler) Preview(c *gin.Context) {
	var req service.TaxCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.taxService.Preview(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
}

// CreateTaxRule creates a new tax rule
// @Summary      Create tax rule
// @Tags         tax
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TaxRuleRequest  true  "Tax rule"
// @Success      201      {object}  response.Response{data=model.TaxRule}
// @Failure      400      {object}  response.Response
// @Router       /api/tax-rules [post]
func (h *TaxHandler) CreateTaxRule(c *gin.Context) {
	var req service.TaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rule, err := h.taxService.CreateTaxRule(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

func (h *TaxHandler) UpdateTaxRule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.TaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rule, err := h.taxService.UpdateTaxRule(c.Request.Context(), id, req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

func (h *TaxHandler) DeleteTaxRule(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.taxService.DeleteTaxRule(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tax rule deleted successfully"))
}
