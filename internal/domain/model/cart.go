package model

import "time"

// One cart per user. LockedAt is set while a checkout is in flight.
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	LockedAt  *time.Time `json:"locked_at"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c Cart) IsLocked() bool {
	return c.LockedAt != nil
}
