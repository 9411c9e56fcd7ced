package models

import "time"

// ==========================================
// SESSION STORAGE
// ==========================================

// SessionEntry is one keyed value of the persisted sales session
// (stock, sales, payment asset).
type SessionEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
