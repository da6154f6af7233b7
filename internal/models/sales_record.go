package models

import "time"

// SalesRecord is one geotagged sales entry submitted by a sales agent.
// Records are immutable once written; there is no update or delete path.
type SalesRecord struct {
	ID            int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Timestamp     int64   `json:"timestamp"` // submission time, unix milliseconds
	StoreName     string  `json:"store_name" validate:"required"`
	StoreAddress  string  `json:"store_address" validate:"required"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Amount        int64   `json:"amount"` // whole rupiah, no minor units
	SalesUsername string  `json:"sales_username" gorm:"index;type:varchar(100)"`
}

// TableName keeps the table name aligned with the original schema.
func (SalesRecord) TableName() string {
	return "sales_data"
}

// SubmittedAt converts the stored millisecond timestamp to local time.
func (r SalesRecord) SubmittedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// HasLocation reports whether coordinates were captured. Both values being
// exactly zero means "location not yet captured", not a real fix.
func (r SalesRecord) HasLocation() bool {
	return r.Latitude != 0.0 || r.Longitude != 0.0
}

// SalesRecordWithSubmitter is a sales record joined with the submitting
// user's display name for the daily progress feed.
type SalesRecordWithSubmitter struct {
	SalesRecord
	SubmitterName string `json:"submitter_name"`
}
