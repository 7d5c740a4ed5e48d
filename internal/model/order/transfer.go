package ordermodel

import "time"

const (
	TransferProcessing = "processing"
	TransferCompleted  = "completed"
	TransferFailed     = "failed"
)

// Transfer is an outbound bank-rail transfer. ExternalID is the bank's transfer id;
// ResourceURL is kept for rows written before ExternalID existed.
type Transfer struct {
	TransferID  uint64    `gorm:"column:transfer_id;primaryKey"`
	ExternalID  string    `gorm:"column:external_id;index;size:128"`
	ResourceURL string    `gorm:"column:resource_url;size:512"`
	OrgID       uint64    `gorm:"column:org_id"`
	Amount      int64     `gorm:"column:amount"`
	Currency    string    `gorm:"column:currency"`
	Status      string    `gorm:"column:status"`
	CreateTime  time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime  time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (Transfer) TableName() string { return "s_transfer" }
