package mainmodel

import "time"

const ConnectionActive = "active"

// Connection links two organizations that may propose splits to each other.
type Connection struct {
	ConnectionID uint64    `gorm:"column:connection_id;primaryKey"`
	OrgAID       uint64    `gorm:"column:org_a_id;index"`
	OrgBID       uint64    `gorm:"column:org_b_id;index"`
	Status       string    `gorm:"column:status"`
	CreateTime   time.Time `gorm:"column:create_time;autoCreateTime"`
}

func (Connection) TableName() string { return "s_connection" }

// Links reports whether orgID is one side of the connection.
func (c *Connection) Links(orgID uint64) bool {
	return c.OrgAID == orgID || c.OrgBID == orgID
}

// Other returns the opposite side from orgID.
func (c *Connection) Other(orgID uint64) uint64 {
	if c.OrgAID == orgID {
		return c.OrgBID
	}
	return c.OrgAID
}
