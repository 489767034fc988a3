package handler

import (
	"errors"
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	limiter         *middleware.IPRateLimiter
}

func NewCheckoutHandler(checkoutService service.CheckoutService, limiter *middleware.IPRateLimiter) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, limiter: limiter}
}

func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkout := router.Group("/api/checkout")
	checkout.Use(middleware.RateLimit(h.limiter))
	{
		checkout.POST("/quote", h.Quote)
		checkout.POST("", h.PlaceOrder)
	}
}

// Quote prices a cart without writing anything
// @Summary      Quote a cart
// @Description  Prices lines from the catalog, applies the discount code, service charge and matching taxes, and reports minimum-order eligibility.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CheckoutRequest  true  "Cart"
// @Success      200      {object}  response.Response{data=service.Quote}
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /api/checkout/quote [post]
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	quote, err := h.checkoutService.Quote(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// PlaceOrder places the order when the total meets the minimum
// @Summary      Place order
// @Description  Returns 422 with the quote when the final total is below the minimum order amount.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CheckoutRequest  true  "Cart"
// @Success      201      {object}  response.Response{data=service.PlaceOrderResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response{data=service.Quote}
// @Router       /api/checkout [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.checkoutService.PlaceOrder(c.Request.Context(), req)
	if errors.Is(err, service.ErrBelowMinimum) {
		c.JSON(http.StatusUnprocessableEntity, response.ErrorWithData(http.StatusUnprocessableEntity, err.Error(), res.Quote))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}
