package handler

import (
	"net/http"
	"time"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	loc               *time.Location
}

func NewStatisticsHandler(statisticsService service.StatisticsService, loc *time.Location) *StatisticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StatisticsHandler{statisticsService: statisticsService, loc: loc}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/api/statistics")
	{
		statsGroup.GET("", middleware.RequirePermission("dashboard.read"), h.GetStatistics)
	}
}

// @Summary      Get Dashboard Statistics
// @Description  Completed-order sales totals, a time series and the best selling products in a date range. Defaults to the current month.
// @Tags         Statistics
// @Produce      json
// @Param        start_date query string false "Start Date (RFC3339)"
// @Param        end_date   query string false "End Date (RFC3339)"
// @Param        group_by   query string false "day, week or month"
// @Success      200 {object} response.Response{data=model.SalesStatistics}
// @Failure      400 {object} response.Response "Invalid date format"
// @Security     BearerAuth
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	now := time.Now().In(h.loc)
	f := service.StatisticsFilter{
		StartDate: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc),
		EndDate:   now,
		GroupBy:   c.Query("group_by"),
	}

	var err error
	if v := c.Query("start_date"); v != "" {
		if f.StartDate, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid start_date format, expected RFC3339"))
			return
		}
	}
	if v := c.Query("end_date"); v != "" {
		if f.EndDate, err = time.Parse(time.RFC3339, v); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid end_date format, expected RFC3339"))
			return
		}
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
