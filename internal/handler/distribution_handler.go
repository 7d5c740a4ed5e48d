package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/middleware"
)

type DistributionService interface {
	Replace(ctx context.Context, actor string, orgID uint64, entries []dto.DistributionEntryReq) (*dto.DistributionVo, error)
	Get(ctx context.Context, actor string, orgID uint64) (*dto.DistributionVo, error)
}

type DistributionHandler struct {
	svc DistributionService
	log *logrus.Logger
}

func NewDistributionHandler(svc DistributionService, log *logrus.Logger) *DistributionHandler {
	return &DistributionHandler{svc: svc, log: log}
}

// Replace swaps the organization's whole distribution table.
func (h *DistributionHandler) Replace(c *gin.Context) {
	orgID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	var req dto.ReplaceDistributionReq
	if !bindJSON(c, h.log, &req) {
		return
	}
	vo, err := h.svc.Replace(c.Request.Context(), middleware.ActorID(c), orgID, req.Entries)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, vo)
}

func (h *DistributionHandler) Get(c *gin.Context) {
	orgID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	vo, err := h.svc.Get(c.Request.Context(), middleware.ActorID(c), orgID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, vo)
}
