package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/fee"
)

const IdempotencyHeader = "Idempotency-Key"

type DonationService interface {
	Quote(req dto.FeeQuoteReq) (fee.Quote, error)
	Submit(ctx context.Context, req dto.CreateDonationReq) (*dto.DonationVo, error)
}

type DonationHandler struct {
	svc DonationService
	log *logrus.Logger
}

func NewDonationHandler(svc DonationService, log *logrus.Logger) *DonationHandler {
	return &DonationHandler{svc: svc, log: log}
}

// Quote prices a donation without submitting anything.
func (h *DonationHandler) Quote(c *gin.Context) {
	var req dto.FeeQuoteReq
	if !bindJSON(c, h.log, &req) {
		return
	}
	q, err := h.svc.Quote(req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, q)
}

func (h *DonationHandler) Create(c *gin.Context) {
	var req dto.CreateDonationReq
	if !bindJSON(c, h.log, &req) {
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyHeader)
	vo, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, vo)
}
