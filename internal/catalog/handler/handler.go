package handler

import (
	"net/http"

	"stockquote_backend/internal/catalog/service"
	"stockquote_backend/internal/catalog/transport"
	"stockquote_backend/platform/httpkit"
	"stockquote_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterProductRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListProducts)
	rg.POST("", h.CreateProduct)
	rg.GET("/:id", h.GetProduct)
	rg.PATCH("/:id", h.UpdateProduct)
	rg.DELETE("/:id", h.DeleteProduct)
}

func (h *Handler) RegisterServiceRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListServices)
	rg.POST("", h.CreateService)
	rg.GET("/:id", h.GetService)
	rg.PATCH("/:id", h.UpdateService)
	rg.DELETE("/:id", h.DeleteService)
}

func (h *Handler) RegisterWarehouseRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListWarehouses)
	rg.POST("", h.CreateWarehouse)
	rg.GET("/:id/inventory", h.ListInventory)
	rg.DELETE("/:id", h.DeleteWarehouse)
}

func (h *Handler) RegisterInventoryRoutes(rg *gin.RouterGroup) {
	rg.PUT("/levels", h.SetLevel)
	rg.POST("/adjust", h.Adjust)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateProduct(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CreateProduct(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) GetProduct(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetProduct(c.Request.Context(), id, identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListProducts(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	resp, err := h.svc.ListProducts(c.Request.Context(), identity.TenantID(), c.Query("search"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateProduct(c.Request.Context(), id, identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteProduct(c.Request.Context(), id, identity.TenantID()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) CreateService(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CreateService(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) GetService(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetService(c.Request.Context(), id, identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListServices(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	resp, err := h.svc.ListServices(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) UpdateService(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateService(c.Request.Context(), id, identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) DeleteService(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteService(c.Request.Context(), id, identity.TenantID()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) CreateWarehouse(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CreateWarehouse(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) ListWarehouses(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	resp, err := h.svc.ListWarehouses(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) DeleteWarehouse(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteWarehouse(c.Request.Context(), id, identity.TenantID()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) ListInventory(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListInventory(c.Request.Context(), id, identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) SetLevel(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.SetLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.SetLevel(c.Request.Context(), identity.TenantID(), req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) Adjust(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.Adjust(c.Request.Context(), identity.TenantID(), req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
