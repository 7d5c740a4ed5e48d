package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateSplitReq struct {
	ConnectionID        uint64          `json:"connection_id,string" binding:"required"`
	ProposerOrgID       uint64          `json:"proposer_org_id,string" binding:"required"`
	Amount              int64           `json:"amount"`
	ProposerPercent     decimal.Decimal `json:"proposer_percent"`
	CounterpartyPercent decimal.Decimal `json:"counterparty_percent"`
	Description         string          `json:"description" binding:"max=500"`
}

type SplitVo struct {
	ProposalID          uint64          `json:"proposal_id,string"`
	ConnectionID        uint64          `json:"connection_id,string"`
	ProposerOrgID       uint64          `json:"proposer_org_id,string"`
	CounterpartyOrgID   uint64          `json:"counterparty_org_id,string"`
	ProposerPercent     decimal.Decimal `json:"proposer_percent"`
	CounterpartyPercent decimal.Decimal `json:"counterparty_percent"`
	Amount              int64           `json:"amount"`
	Description         string          `json:"description,omitempty"`
	Status              string          `json:"status"`
	CreatedBy           string          `json:"created_by"`
	ResolvedBy          string          `json:"resolved_by,omitempty"`
	ResolvedAt          *time.Time      `json:"resolved_at,omitempty"`
	CreateTime          time.Time       `json:"created_at"`
}
