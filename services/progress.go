package services

import (
	"math"
	"time"

	"github.com/yeremiapane/cafe-tables/models"
)

// ProgressOf returns how much of the expected session has elapsed, as an
// integer percent in [0, 100]. It is pure and safe to call on every poll.
func ProgressOf(start, expectedEnd *time.Time, now time.Time) int {
	if start == nil || expectedEnd == nil {
		return 0
	}
	if !now.Before(*expectedEnd) {
		return 100
	}
	total := expectedEnd.Sub(*start)
	elapsed := now.Sub(*start)
	if total <= 0 || elapsed <= 0 {
		return 0
	}
	pct := int(math.Round(float64(elapsed) / float64(total) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

type TableProgress struct {
	TableID          uint               `json:"table_id"`
	Number           int                `json:"number"`
	Status           models.TableStatus `json:"status"`
	Progress         int                `json:"progress"`
	RemainingSeconds int64              `json:"remaining_seconds"`
	ExpectedEndTime  *time.Time         `json:"expected_end_time,omitempty"`
}

func ProgressFor(t models.Table, now time.Time) TableProgress {
	p := TableProgress{
		TableID:         t.ID,
		Number:          t.Number,
		Status:          t.Status,
		Progress:        ProgressOf(t.CurrentSessionStart, t.ExpectedEndTime, now),
		ExpectedEndTime: t.ExpectedEndTime,
	}
	if t.ExpectedEndTime != nil && now.Before(*t.ExpectedEndTime) {
		p.RemainingSeconds = int64(t.ExpectedEndTime.Sub(now).Seconds())
	}
	return p
}

// BuildProgress keeps the input order.
func BuildProgress(tables []models.Table, now time.Time) []TableProgress {
	out := make([]TableProgress, 0, len(tables))
	for _, t := range tables {
		out = append(out, ProgressFor(t, now))
	}
	return out
}
