package handler

import (
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/pagination"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MenuHandler struct {
	menuService service.MenuService
}

func NewMenuHandler(menuService service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/menu", h.GetMenu)

	categories := router.Group("/api/categories")
	{
		categories.GET("", middleware.RequirePermission("menu.read"), h.ListCategories)
		categories.POST("", middleware.RequirePermission("menu.write"), h.CreateCategory)
		categories.PUT("/:id", middleware.RequirePermission("menu.write"), h.UpdateCategory)
		categories.DELETE("/:id", middleware.RequirePermission("menu.write"), h.DeleteCategory)
	}

	products := router.Group("/api/products")
	{
		products.GET("", middleware.RequirePermission("menu.read"), h.ListProducts)
		products.GET("/:id", middleware.RequirePermission("menu.read"), h.GetProduct)
		products.POST("", middleware.RequirePermission("menu.write"), h.CreateProduct)
		products.PUT("/:id", middleware.RequirePermission("menu.write"), h.UpdateProduct)
		products.DELETE("/:id", middleware.RequirePermission("menu.write"), h.DeleteProduct)
	}
}

// GetMenu returns the customer-facing menu
// @Summary      Get menu
// @Description  Active categories with their available products and customizations.
// @Tags         menu
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Category}
// @Router       /api/menu [get]
func (h *MenuHandler) GetMenu(c *gin.Context) {
	menu, err := h.menuService.GetMenu(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, menu))
}

func (h *MenuHandler) ListCategories(c *gin.Context) {
	categories, err := h.menuService.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory creates a menu category
// @Summary      Create category
// @Tags         menu
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CategoryRequest  true  "Category"
// @Success      201      {object}  response.Response{data=model.Category}
// @Failure      409      {object}  response.Response
// @Router       /api/categories [post]
func (h *MenuHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.menuService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

func (h *MenuHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.menuService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// DeleteCategory removes an empty category
// @Summary      Delete category
// @Description  Fails with 409 while products still reference the category.
// @Tags         menu
// @Security     BearerAuth
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/categories/{id} [delete]
func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.menuService.DeleteCategory(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Category deleted successfully"))
}

// ListProducts returns products, optionally filtered
// @Summary      List products
// @Tags         menu
// @Security     BearerAuth
// @Produce      json
// @Param        category_id  query     string  false  "Category ID"
// @Param        search       query     string  false  "Name contains"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=[]model.Product}
// @Router       /api/products [get]
func (h *MenuHandler) ListProducts(c *gin.Context) {
	var categoryID *uuid.UUID
	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid category_id"))
			return
		}
		categoryID = &id
	}

	p := pagination.Parse(c)
	products, total, err := h.menuService.ListProducts(c.Request.Context(), categoryID, c.Query("search"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, products, p.Page, p.Limit, total))
}

func (h *MenuHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	product, err := h.menuService.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// CreateProduct creates a product with its customizations
// @Summary      Create product
// @Tags         menu
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /api/products [post]
func (h *MenuHandler) CreateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	product, err := h.menuService.CreateProduct(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

func (h *MenuHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	product, err := h.menuService.UpdateProduct(c.Request.Context(), id, req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

func (h *MenuHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.menuService.DeleteProduct(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product deleted successfully"))
}
