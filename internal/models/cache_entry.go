package models

import "time"

// CacheEntry is one row of the database-backed cache. Value holds the raw
// bytes the store was asked to keep; expiry is enforced on read and by the
// maintenance purge, not by the database itself.
type CacheEntry struct {
	Key       string    `gorm:"column:key;primaryKey;size:256"`
	Value     []byte    `gorm:"column:value;type:blob"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the cache table clearly separated from domain tables.
func (CacheEntry) TableName() string { return "cache_entries" }
