package mainmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SplitProposed = "proposed"
	SplitAccepted = "accepted"
	SplitRejected = "rejected"
)

type SplitProposal struct {
	ProposalID          uint64          `gorm:"column:proposal_id;primaryKey"`
	ConnectionID        uint64          `gorm:"column:connection_id;index"`
	ProposerOrgID       uint64          `gorm:"column:proposer_org_id;index"`
	CounterpartyOrgID   uint64          `gorm:"column:counterparty_org_id;index"`
	ProposerPercent     decimal.Decimal `gorm:"column:proposer_percent;type:decimal(5,2)"`
	CounterpartyPercent decimal.Decimal `gorm:"column:counterparty_percent;type:decimal(5,2)"`
	Amount              int64           `gorm:"column:amount"`
	Description         string          `gorm:"column:description"`
	Status              string          `gorm:"column:status;index"`
	CreatedBy           string          `gorm:"column:created_by"`
	ResolvedBy          string          `gorm:"column:resolved_by"`
	ResolvedAt          *time.Time      `gorm:"column:resolved_at"`
	CreateTime          time.Time       `gorm:"column:create_time;autoCreateTime"`
}

func (SplitProposal) TableName() string { return "s_split_proposal" }

// Involves reports whether orgID is either party.
func (p *SplitProposal) Involves(orgID uint64) bool {
	return p.ProposerOrgID == orgID || p.CounterpartyOrgID == orgID
}

// PercentFor returns the agreed share for orgID, zero if it is not a party.
func (p *SplitProposal) PercentFor(orgID uint64) decimal.Decimal {
	switch orgID {
	case p.ProposerOrgID:
		return p.ProposerPercent
	case p.CounterpartyOrgID:
		return p.CounterpartyPercent
	}
	return decimal.Zero
}
