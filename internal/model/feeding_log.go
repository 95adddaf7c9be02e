package model

import "time"

// FeedingLog is an append-only record of a single tube feeding. Rows are
// never updated after creation; they are only deleted in bulk by a tracker
// reset or account deletion.
type FeedingLog struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	UserID        string    `gorm:"size:36;index;not null"`
	AmountML      float64   `gorm:"column:amount_ml;not null"`
	FlushedBefore bool      `gorm:"default:false"`
	FlushedAfter  bool      `gorm:"default:false"`
	TimeGiven     time.Time `gorm:"index;autoCreateTime"`
}

func (FeedingLog) TableName() string {
	return "feeding_logs"
}
