package models

import (
	"time"
)

// Notification is a customer-facing message sent for a table.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DispatchID  string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"dispatch_id"`
	TableID     uint      `gorm:"not null;index" json:"table_id"`
	TableNumber int       `gorm:"not null" json:"table_number"`
	Recipient   string    `gorm:"type:varchar(100);not null" json:"recipient"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Channel     string    `gorm:"type:varchar(20);not null" json:"channel"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
