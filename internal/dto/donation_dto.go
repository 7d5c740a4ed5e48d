package dto

import "donation-settle-api/internal/fee"

type CreateDonationReq struct {
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	OrgID      uint64 `json:"org_id,string" binding:"required"`
	CampaignID string `json:"campaign_id"`
	FundID     string `json:"fund_id"`
	DonorEmail string `json:"donor_email" binding:"required,email"`
	DonorName  string `json:"donor_name"`
	Policy     string `json:"policy" binding:"required"`
	Anonymous  bool   `json:"anonymous"`
	Recurrence string `json:"recurrence"`
	SplitID    uint64 `json:"split_id,string"`
	Currency   string `json:"currency"`
	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

type DonationVo struct {
	DonationID   uint64    `json:"donation_id,string"`
	OrgID        uint64    `json:"org_id,string"`
	PaymentRef   string    `json:"payment_ref"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Status       string    `json:"status"`
	Currency     string    `json:"currency"`
	Quote        fee.Quote `json:"quote"`
}
