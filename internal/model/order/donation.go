package ordermodel

import "time"

const (
	DonationPending   = "pending"
	DonationSucceeded = "succeeded"
	DonationFailed    = "failed"
)

// Donation is written once the processor has accepted the capture request.
type Donation struct {
	DonationID     uint64    `gorm:"column:donation_id;primaryKey"`
	OrgID          uint64    `gorm:"column:org_id;index"`
	CampaignID     string    `gorm:"column:campaign_id"`
	FundID         string    `gorm:"column:fund_id"`
	SplitID        uint64    `gorm:"column:split_id"`
	DonorEmail     string    `gorm:"column:donor_email"`
	DonorName      string    `gorm:"column:donor_name"`
	Anonymous      bool      `gorm:"column:anonymous"`
	Recurrence     string    `gorm:"column:recurrence"`
	Policy         string    `gorm:"column:policy"`
	Currency       string    `gorm:"column:currency"`
	Amount         int64     `gorm:"column:amount"` // pre-markup donation
	ChargeAmount   int64     `gorm:"column:charge_amount"`
	PlatformFee    int64     `gorm:"column:platform_fee"`
	PaymentRef     string    `gorm:"column:payment_ref;uniqueIndex;size:128"`
	IdempotencyKey string    `gorm:"column:idempotency_key;size:128"`
	Status         string    `gorm:"column:status"`
	CreateTime     time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime     time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (Donation) TableName() string { return "s_donation" }
