package handler

import (
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/pagination"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
)

type DiscountHandler struct {
	discountService service.DiscountService
}

func NewDiscountHandler(discountService service.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountService: discountService}
}

func (h *DiscountHandler) RegisterRoutes(router *gin.RouterGroup) {
	discounts := router.Group("/api/discounts")
	{
		discounts.POST("/validate", h.Validate)

		discounts.GET("", middleware.RequirePermission("discounts.read"), h.ListDiscounts)
		discounts.GET("/:id", middleware.RequirePermission("discounts.read"), h.GetDiscount)
		discounts.POST("", middleware.RequirePermission("discounts.write"), h.CreateDiscount)
		discounts.PUT("/:id", middleware.RequirePermission("discounts.write"), h.UpdateDiscount)
		discounts.DELETE("/:id", middleware.RequirePermission("discounts.write"), h.DeleteDiscount)
	}
}

// Validate checks a discount code against an order subtotal
// @Summary      Validate discount code
// @Description  A rejected code is still a 200 with ok=false and a reason.
// @Tags         discounts
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ValidateDiscountRequest  true  "Code and subtotal"
// @Success      200      {object}  response.Response{data=pricing.DiscountResult}
// @Failure      400      {object}  response.Response
// @Router       /api/discounts/validate [post]
func (h *DiscountHandler) Validate(c *gin.Context) {
	var req service.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.discountService.Validate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListDiscounts returns discount codes, optionally filtered by code
// @Summary      List discount codes
// @Tags         discounts
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Code contains"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]model.DiscountCode}
// @Router       /api/discounts [get]
func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	p := pagination.Parse(c)
	codes, total, err := h.discountService.ListDiscounts(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, codes, p.Page, p.Limit, total))
}

func (h *DiscountHandler) GetDiscount(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.discountService.GetDiscount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, d))
}

func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	var req service.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.discountService.CreateDiscount(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, d))
}

func (h *DiscountHandler) UpdateDiscount(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.discountService.UpdateDiscount(c.Request.Context(), id, req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, d))
}

func (h *DiscountHandler) DeleteDiscount(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.discountService.DeleteDiscount(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Discount code deleted successfully"))
}
