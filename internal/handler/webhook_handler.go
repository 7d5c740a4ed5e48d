package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/callback"
	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/middleware"
	"donation-settle-api/internal/utils"
)

const maxWebhookBody = 1 << 20

type Reconciler interface {
	Handle(ctx context.Context, rail callback.Rail, h http.Header, body []byte) (callback.Outcome, error)
}

// WebhookHandler acknowledges every authenticated notification. Only signature
// failures (401) and storage failures (500) are refused, the latter so the rail
// redelivers.
type WebhookHandler struct {
	rec  Reconciler
	bank callback.Rail
	card callback.Rail
	log  *logrus.Logger
}

func NewWebhookHandler(rec Reconciler, bank, card callback.Rail, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{rec: rec, bank: bank, card: card, log: log}
}

func (h *WebhookHandler) Bank(c *gin.Context) { h.handle(c, h.bank) }

func (h *WebhookHandler) Card(c *gin.Context) { h.handle(c, h.card) }

func (h *WebhookHandler) handle(c *gin.Context, rail callback.Rail) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, utils.ErrorWithTrace(constant.CodeInvalidParams, middleware.TraceID(c)))
			return
		}
		respondError(c, h.log, constant.NewError(constant.CodeInvalidParams))
		return
	}

	out, err := h.rec.Handle(c.Request.Context(), rail, c.Request.Header, body)
	switch {
	case callback.IsAuthFailure(err):
		c.JSON(http.StatusUnauthorized, utils.ErrorWithTrace(constant.CodeSignatureError, middleware.TraceID(c)))
	case err != nil:
		respondError(c, h.log, fmt.Errorf("%w: %v", constant.NewError(constant.CodeDatabaseError), err))
	default:
		respondOK(c, dto.WebhookAck{Received: true, Outcome: string(out)})
	}
}
