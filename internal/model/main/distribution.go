package mainmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionConfig is the one internal fund-distribution config of an organization.
type DistributionConfig struct {
	ConfigID   uint64              `gorm:"column:config_id;primaryKey"`
	OrgID      uint64              `gorm:"column:org_id;uniqueIndex"`
	UpdatedBy  string              `gorm:"column:updated_by"`
	Entries    []DistributionEntry `gorm:"foreignKey:ConfigID;references:ConfigID"`
	CreateTime time.Time           `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time           `gorm:"column:update_time;autoUpdateTime"`
}

func (DistributionConfig) TableName() string { return "s_distribution_config" }

type DistributionEntry struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	ConfigID   uint64          `gorm:"column:config_id;index"`
	Seq        int             `gorm:"column:seq"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:decimal(5,2)"`
	AccountRef string          `gorm:"column:account_ref"`
}

func (DistributionEntry) TableName() string { return "s_distribution_entry" }
