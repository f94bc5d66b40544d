package webhook

import (
	"showings_backend/platform/httpkit"
	"showings_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// payload is the raw webhook body: {type, data:{...}}.
type payload struct {
	Type string `json:"type"`
	Data struct {
		CallID         string `json:"callId"`
		Confirmed      *bool  `json:"confirmed"`
		Status         string `json:"status"`
		Date           string `json:"date"`
		CustomerNumber string `json:"customerNumber"`
		Error          string `json:"error"`
	} `json:"data"`
}

type Handler struct {
	svc *Service
	log *logger.Logger
}

func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Receive ingests a gateway event. The endpoint acknowledges success no
// matter what: failing here would only make the gateway retry an event we
// cannot act on anyway.
func (h *Handler) Receive(c *gin.Context) {
	var body payload
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Warn("unparseable webhook payload", "error", err)
		httpkit.OK(c, nil)
		return
	}

	event := Event{
		Type:           body.Type,
		CallID:         body.Data.CallID,
		Confirmed:      body.Data.Confirmed,
		Status:         body.Data.Status,
		Date:           body.Data.Date,
		CustomerNumber: body.Data.CustomerNumber,
		Error:          body.Data.Error,
	}
	if err := h.svc.Reconcile(c.Request.Context(), event); err != nil {
		h.log.Error("webhook reconciliation failed", "callId", event.CallID, "error", err)
	}

	httpkit.OK(c, nil)
}
