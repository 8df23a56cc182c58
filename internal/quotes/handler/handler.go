package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stockquote_backend/internal/quotes/service"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/httpkit"
	"stockquote_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles the authenticated quote routes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/send", h.Send)
	rg.POST("/:id/resend", h.Resend)
	rg.POST("/:id/convert", h.Convert)
	rg.GET("/:id/comments", h.ListComments)
	rg.POST("/:id/comments", h.AddComment)
	rg.GET("/:id/events", h.ListEvents)
	rg.GET("/:id/items", h.ListItems)
	rg.POST("/:id/items", h.AddItem)
	rg.PATCH("/:id/items/:itemId", h.UpdateItem)
	rg.DELETE("/:id/items/:itemId", h.DeleteItem)
}

func actorFrom(c *gin.Context) service.Actor {
	identity := httpkit.MustGetIdentity(c)
	return service.Actor{
		ID:             identity.UserID(),
		OrganizationID: identity.TenantID(),
		Email:          identity.Email(),
		Roles:          identity.Roles(),
	}
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	actor := actorFrom(c)

	var req transport.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) List(c *gin.Context) {
	actor := actorFrom(c)

	var req transport.ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Update(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), actor, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) Send(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.Send(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Resend(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.Resend(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Convert(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.Convert(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) AddComment(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.AddComment(c.Request.Context(), actor, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) ListComments(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.ListComments(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListEvents(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.ListEvents(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListItems(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.ListItems(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) AddItem(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req transport.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.AddItem(c.Request.Context(), actor, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	var req transport.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateItem(c.Request.Context(), actor, id, itemID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	if err := h.svc.DeleteItem(c.Request.Context(), actor, id, itemID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
