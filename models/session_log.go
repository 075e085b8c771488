package models

import "time"

// SessionLog is the history entry written when an occupied table is released.
type SessionLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TableID         uint       `gorm:"not null;index" json:"table_id"`
	TableNumber     int        `gorm:"not null" json:"table_number"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	ExpectedEndAt   *time.Time `json:"expected_end_at,omitempty"`
	EndedAt         time.Time  `gorm:"not null;index" json:"ended_at"`
	DurationSeconds int64      `gorm:"not null" json:"duration_seconds"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
}

// NewSessionLog builds the history entry for the move from before to after.
// It returns false when the patch did not close a session.
func NewSessionLog(before, after Table, now time.Time) (SessionLog, bool) {
	if before.Status != StatusOccupied || after.Status == StatusOccupied || before.CurrentSessionStart == nil {
		return SessionLog{}, false
	}
	ended := now
	if after.LastSessionEndedAt != nil {
		ended = *after.LastSessionEndedAt
	}
	started := *before.CurrentSessionStart
	entry := SessionLog{
		TableID:         before.ID,
		TableNumber:     before.Number,
		StartedAt:       started,
		EndedAt:         ended,
		DurationSeconds: int64(ended.Sub(started).Seconds()),
	}
	if before.ExpectedEndTime != nil {
		expected := *before.ExpectedEndTime
		entry.ExpectedEndAt = &expected
	}
	return entry, true
}
