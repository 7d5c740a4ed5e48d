package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type DistributionEntryReq struct {
	Percentage decimal.Decimal `json:"percentage"`
	AccountRef string          `json:"account_ref"`
}

type ReplaceDistributionReq struct {
	Entries []DistributionEntryReq `json:"entries"`
}

type DistributionEntryVo struct {
	Percentage decimal.Decimal `json:"percentage"`
	AccountRef string          `json:"account_ref"`
}

type DistributionVo struct {
	OrgID      uint64                `json:"org_id,string"`
	Entries    []DistributionEntryVo `json:"entries"`
	UpdatedBy  string                `json:"updated_by"`
	UpdateTime time.Time             `json:"updated_at"`
}
