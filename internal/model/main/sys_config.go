package mainmodel

import "time"

// SysConfig is an operator-editable key/value setting.
type SysConfig struct {
	ConfigID    uint64    `gorm:"column:config_id;primaryKey;autoIncrement"`
	ConfigKey   string    `gorm:"column:config_key;size:128;uniqueIndex"`
	ConfigValue string    `gorm:"column:config_value;size:512"`
	Remark      string    `gorm:"column:remark"`
	UpdateBy    string    `gorm:"column:update_by"`
	UpdateTime  time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (SysConfig) TableName() string { return "s_sys_config" }
