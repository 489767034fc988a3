package handler

import (
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	tableService service.TableService
}

func NewTableHandler(tableService service.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

func (h *TableHandler) RegisterRoutes(router *gin.RouterGroup) {
	tables := router.Group("/api/tables")
	{
		tables.GET("", middleware.RequirePermission("tables.read"), h.ListTables)
		tables.GET("/:id", middleware.RequirePermission("tables.read"), h.GetTable)
		tables.POST("", middleware.RequirePermission("tables.write"), h.CreateTable)
		tables.PUT("/:id", middleware.RequirePermission("tables.write"), h.UpdateTable)
		tables.DELETE("/:id", middleware.RequirePermission("tables.write"), h.DeleteTable)
	}
}

// ListTables returns the floor plan
// @Summary      List tables
// @Tags         tables
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "available, occupied, reserved"
// @Success      200     {object}  response.Response{data=[]model.Table}
// @Router       /api/tables [get]
func (h *TableHandler) ListTables(c *gin.Context) {
	tables, err := h.tableService.ListTables(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tables))
}

func (h *TableHandler) GetTable(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	table, err := h.tableService.GetTable(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, table))
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	var req service.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	table, err := h.tableService.CreateTable(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, table))
}

func (h *TableHandler) UpdateTable(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	table, err := h.tableService.UpdateTable(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, table))
}

// DeleteTable removes a table without open orders
// @Summary      Delete table
// @Tags         tables
// @Security     BearerAuth
// @Param        id   path      string  true  "Table ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/tables/{id} [delete]
func (h *TableHandler) DeleteTable(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.tableService.DeleteTable(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Table deleted successfully"))
}
