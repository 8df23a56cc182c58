package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockquote_backend/internal/quotes/service"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/httpkit"
	"stockquote_backend/platform/validator"
)

// PublicHandler serves the unauthenticated client view behind an
// access token.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewPublic(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes registers the token routes on the public group.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes/:token", h.Get)
	rg.POST("/quotes/:token/approve", h.Approve)
	rg.POST("/quotes/:token/decline", h.Decline)
	rg.POST("/quotes/:token/comments", h.Comment)
}

func (h *PublicHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetPublicQuote(c.Request.Context(), c.Param("token"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *PublicHandler) Approve(c *gin.Context) {
	var req transport.PublicApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.ApproveByToken(c.Request.Context(), c.Param("token"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *PublicHandler) Decline(c *gin.Context) {
	var req transport.PublicDeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.DeclineByToken(c.Request.Context(), c.Param("token"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *PublicHandler) Comment(c *gin.Context) {
	var req transport.PublicCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CommentByToken(c.Request.Context(), c.Param("token"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}
