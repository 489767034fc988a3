package handler

import (
	"net/http"

	"restaurant/internal/middleware"
	"restaurant/internal/service"
	"restaurant/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

type updateSettingRequest struct {
	Value string `json:"value"`
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	{
		settings.GET("", middleware.RequirePermission("settings.read"), h.GetSettings)
		settings.PUT("/:key", middleware.RequirePermission("settings.write"), h.UpdateSetting)
	}
}

// GetSettings returns the effective pricing settings
// @Summary      Get pricing settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.PricingSettings}
// @Router       /api/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Pricing(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// UpdateSetting changes one pricing setting
// @Summary      Update pricing setting
// @Description  Keys: tax_rate, min_order_amount, service_charge_fixed, service_charge_rate, tax_include_service_charge. An empty value clears optional settings.
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        key      path      string                 true  "Setting key"
// @Param        payload  body      updateSettingRequest   true  "New value"
// @Success      200      {object}  response.Response{data=service.PricingSettings}
// @Failure      400      {object}  response.Response
// @Router       /api/settings/{key} [put]
func (h *SettingsHandler) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	settings, err := h.settingsService.UpdateSetting(c.Request.Context(), c.Param("key"), req.Value, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}
