package mainmodel

import "time"

// Organization is a fundraising organization. The designated representative is
// DelegatedAdminID when set, otherwise OwnerID.
type Organization struct {
	OrgID            uint64    `gorm:"column:org_id;primaryKey"`
	Name             string    `gorm:"column:name"`
	OwnerID          string    `gorm:"column:owner_id"`
	DelegatedAdminID string    `gorm:"column:delegated_admin_id"`
	SubAccount       string    `gorm:"column:sub_account"` // processor connected-account reference
	CreateTime       time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime       time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (Organization) TableName() string { return "s_organization" }

// Representative returns the single user allowed to act for the organization.
func (o *Organization) Representative() string {
	if o.DelegatedAdminID != "" {
		return o.DelegatedAdminID
	}
	return o.OwnerID
}
