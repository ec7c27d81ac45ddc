package model

import "time"

// Publication 记录一次成功发布的 HLS 资源
type Publication struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID        string    `json:"runId" gorm:"size:36;uniqueIndex;not null"`
	Prefix       string    `json:"prefix" gorm:"size:512;index;not null"`
	Bucket       string    `json:"bucket" gorm:"size:255;not null"`
	PlaylistURL  string    `json:"playlistUrl" gorm:"size:1024;not null"`
	Mode         string    `json:"mode" gorm:"size:16;not null"` // compressed, uncompressed
	SampleRateHz int       `json:"sampleRateHz"`
	BitDepth     int       `json:"bitDepth"`
	SegmentCount int       `json:"segmentCount"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}

// TableName 指定表名
func (Publication) TableName() string {
	return "publications"
}
