package model

import "time"

// TrackingRecord is the durable cursor of one pipeline over one upstream
// stream type. Updated in the same transaction as the downstream append.
type TrackingRecord struct {
	PipelineName       string    `gorm:"type:varchar(64);primaryKey"`
	UpstreamStreamType string    `gorm:"type:varchar(64);primaryKey"`
	LastPosition       int64     `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (TrackingRecord) TableName() string {
	return "tracking_records"
}
