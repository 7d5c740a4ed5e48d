package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/middleware"
)

type SplitService interface {
	Create(ctx context.Context, actor string, req dto.CreateSplitReq) (*dto.SplitVo, error)
	Accept(ctx context.Context, actor string, proposalID uint64) (*dto.SplitVo, error)
	Reject(ctx context.Context, actor string, proposalID uint64) (*dto.SplitVo, error)
	Get(ctx context.Context, actor string, proposalID uint64) (*dto.SplitVo, error)
	ListForOrganization(ctx context.Context, actor string, orgID uint64) ([]dto.SplitVo, error)
}

type SplitHandler struct {
	svc SplitService
	log *logrus.Logger
}

func NewSplitHandler(svc SplitService, log *logrus.Logger) *SplitHandler {
	return &SplitHandler{svc: svc, log: log}
}

func (h *SplitHandler) Create(c *gin.Context) {
	var req dto.CreateSplitReq
	if !bindJSON(c, h.log, &req) {
		return
	}
	vo, err := h.svc.Create(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, vo)
}

func (h *SplitHandler) Get(c *gin.Context) {
	h.byID(c, h.svc.Get)
}

func (h *SplitHandler) Accept(c *gin.Context) {
	h.byID(c, h.svc.Accept)
}

func (h *SplitHandler) Reject(c *gin.Context) {
	h.byID(c, h.svc.Reject)
}

func (h *SplitHandler) byID(c *gin.Context, fn func(context.Context, string, uint64) (*dto.SplitVo, error)) {
	id, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	vo, err := fn(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, vo)
}

// ListByOrganization returns every proposal the organization is a party to.
func (h *SplitHandler) ListByOrganization(c *gin.Context) {
	orgID, ok := pathID(c, h.log, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListForOrganization(c.Request.Context(), middleware.ActorID(c), orgID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if list == nil {
		list = []dto.SplitVo{}
	}
	respondOK(c, list)
}
