package ordermodel

import "time"

// SettlementEvent is the write-once log of every accepted notification.
type SettlementEvent struct {
	EventID     string    `gorm:"column:event_id;primaryKey;size:128"`
	Rail        string    `gorm:"column:rail"`
	Category    string    `gorm:"column:category"`
	ExternalRef string    `gorm:"column:external_ref;size:128"`
	Payload     string    `gorm:"column:payload;type:text"`
	ReceivedAt  time.Time `gorm:"column:received_at"`
}

func (SettlementEvent) TableName() string { return "s_settlement_event" }
