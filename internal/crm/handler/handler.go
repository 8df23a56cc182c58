package handler

import (
	"net/http"

	"stockquote_backend/internal/crm/service"
	"stockquote_backend/internal/crm/transport"
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

// Handler handles HTTP requests for companies and clients.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterCompanyRoutes registers the company routes.
func (h *Handler) RegisterCompanyRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListCompanies)
	rg.POST("", h.CreateCompany)
	rg.GET("/:id", h.GetCompany)
	rg.PATCH("/:id", h.UpdateCompany)
	rg.DELETE("/:id", h.DeleteCompany)
}

// RegisterClientRoutes registers the client routes.
func (h *Handler) RegisterClientRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListClients)
	rg.POST("", h.CreateClient)
	rg.GET("/:id", h.GetClient)
	rg.PATCH("/:id", h.UpdateClient)
	rg.DELETE("/:id", h.DeleteClient)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateCompany(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CreateCompany(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) GetCompany(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetCompany(c.Request.Context(), id, identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListCompanies(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	resp, err := h.svc.ListCompanies(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateCompany(c.Request.Context(), id, identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) DeleteCompany(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteCompany(c.Request.Context(), id, identity.TenantID()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) CreateClient(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CreateClient(c.Request.Context(), identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) GetClient(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetClient(c.Request.Context(), id, identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListClients(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	resp, err := h.svc.ListClients(c.Request.Context(), identity.TenantID(), c.Query("search"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateClient(c.Request.Context(), id, identity.TenantID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteClient(c.Request.Context(), id, identity.TenantID()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
