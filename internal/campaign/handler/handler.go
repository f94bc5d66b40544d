// Package handler exposes the campaign HTTP endpoints.
package handler

import (
	"net/http"

	"showings_backend/internal/campaign/service"
	"showings_backend/internal/campaign/transport"
	"showings_backend/platform/config"
	"showings_backend/platform/httpkit"
	"showings_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	cfg config.VapiConfig
	val *validator.Validator
}

func New(svc *service.Service, cfg config.VapiConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val}
}

// CallPhone dispatches a single call.
func (h *Handler) CallPhone(c *gin.Context) {
	var req transport.SingleCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.DispatchSingle(c.Request.Context(), req.ToInput())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// CallBulk starts a campaign and returns per-lead results.
func (h *Handler) CallBulk(c *gin.Context) {
	var req transport.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	results, err := h.svc.DispatchBulk(c.Request.Context(), req.ToCandidates(), req.ToSettings())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, results)
}

// VapiPublicConfig hands the dashboard the public key and assistant id it
// needs for the in-browser voice widget. The private key never leaves the
// server.
func (h *Handler) VapiPublicConfig(c *gin.Context) {
	if !h.cfg.IsVapiEnabled() {
		httpkit.Error(c, http.StatusServiceUnavailable, "Vapi service unavailable", nil)
		return
	}

	httpkit.OK(c, transport.VapiConfigResponse{
		PublicKey:   h.cfg.GetVapiPublicKey(),
		AssistantID: h.cfg.GetVapiAssistantID(),
	})
}
