package models

import "time"

// Follow records that FollowerID follows FolloweeID
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:varchar(36)" json:"follower_id"`
	FolloweeID string    `gorm:"primaryKey;type:varchar(36);index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName pins the join table name
func (Follow) TableName() string {
	return "follows"
}
