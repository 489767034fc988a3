package handler

import (
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/pagination"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
)

type WaiterCallHandler struct {
	waiterCallService service.WaiterCallService
	limiter           *middleware.IPRateLimiter
}

func NewWaiterCallHandler(waiterCallService service.WaiterCallService, limiter *middleware.IPRateLimiter) *WaiterCallHandler {
	return &WaiterCallHandler{waiterCallService: waiterCallService, limiter: limiter}
}

func (h *WaiterCallHandler) RegisterRoutes(router *gin.RouterGroup) {
	calls := router.Group("/api/waiter-calls")
	{
		calls.POST("", middleware.RateLimit(h.limiter), h.CallWaiter)
		calls.GET("", middleware.RequirePermission("waiter_calls.read"), h.ListCalls)
		calls.PUT("/:id/acknowledge", middleware.RequirePermission("waiter_calls.write"), h.Acknowledge)
		calls.PUT("/:id/resolve", middleware.RequirePermission("waiter_calls.write"), h.Resolve)
	}
}

// CallWaiter asks staff to come to a table
// @Summary      Call waiter
// @Description  Returns 201 for a new call and 200 with the existing call while one is still open for the same table and reason.
// @Tags         waiter-calls
// @Accept       json
// @Produce      json
// @Param        payload  body      service.WaiterCallRequest  true  "Table and reason"
// @Success      201      {object}  response.Response{data=model.WaiterCall}
// @Success      200      {object}  response.Response{data=model.WaiterCall}
// @Failure      404      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /api/waiter-calls [post]
func (h *WaiterCallHandler) CallWaiter(c *gin.Context) {
	var req service.WaiterCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	call, created, err := h.waiterCallService.CallWaiter(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, response.Success(status, call))
}

func (h *WaiterCallHandler) ListCalls(c *gin.Context) {
	p := pagination.Parse(c)
	calls, total, err := h.waiterCallService.ListCalls(c.Request.Context(), c.Query("status"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, calls, p.Page, p.Limit, total))
}

func (h *WaiterCallHandler) Acknowledge(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	call, err := h.waiterCallService.Acknowledge(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, call))
}

func (h *WaiterCallHandler) Resolve(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	call, err := h.waiterCallService.Resolve(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, call))
}
