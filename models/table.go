package models

import (
	"fmt"
	"time"
)

type TableStatus string

const (
	StatusAvailable TableStatus = "available"
	StatusReserved  TableStatus = "reserved"
	StatusOccupied  TableStatus = "occupied"
)

// ParseTableStatus only accepts the three known statuses.
func ParseTableStatus(raw string) (TableStatus, bool) {
	switch TableStatus(raw) {
	case StatusAvailable, StatusReserved, StatusOccupied:
		return TableStatus(raw), true
	}
	return "", false
}

// Reservation is present only while a table is reserved.
type Reservation struct {
	CustomerName string    `json:"customer_name"`
	Contact      string    `json:"contact,omitempty"`
	StartTime    time.Time `json:"start_time"`
}

// Table is the snapshot handed out by the store. Pointer fields are never
// mutated in place; patches always swap in fresh values.
type Table struct {
	ID                  uint         `json:"id"`
	Number              int          `json:"number"`
	Capacity            int          `json:"capacity"`
	Status              TableStatus  `json:"status"`
	CurrentSessionStart *time.Time   `json:"current_session_start,omitempty"`
	ExpectedEndTime     *time.Time   `json:"expected_end_time,omitempty"`
	LastSessionEndedAt  *time.Time   `json:"last_session_ended_at,omitempty"`
	Reservation         *Reservation `json:"reservation,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// PublicTable is what unauthenticated callers see: seating state only,
// never who reserved the table.
type PublicTable struct {
	ID              uint        `json:"id"`
	Number          int         `json:"number"`
	Capacity        int         `json:"capacity"`
	Status          TableStatus `json:"status"`
	ExpectedEndTime *time.Time  `json:"expected_end_time,omitempty"`
}

func (t Table) Public() PublicTable {
	return PublicTable{
		ID:              t.ID,
		Number:          t.Number,
		Capacity:        t.Capacity,
		Status:          t.Status,
		ExpectedEndTime: t.ExpectedEndTime,
	}
}

// Inconsistency returns a description of the first structural rule the table
// breaks, or an empty string when the record is consistent.
func (t Table) Inconsistency() string {
	if _, ok := ParseTableStatus(string(t.Status)); !ok {
		return fmt.Sprintf("unknown status %q", t.Status)
	}
	occupied := t.Status == StatusOccupied
	if occupied != (t.CurrentSessionStart != nil) {
		return "current_session_start must be set if and only if status is occupied"
	}
	if (t.Status == StatusReserved) != (t.Reservation != nil) {
		return "reservation must be set if and only if status is reserved"
	}
	if t.ExpectedEndTime != nil {
		if !occupied {
			return "expected_end_time is only allowed while occupied"
		}
		if !t.ExpectedEndTime.After(*t.CurrentSessionStart) {
			return "expected_end_time must be after current_session_start"
		}
	}
	return ""
}

// TablePatch is a partial update. Nil fields are left alone; the Clear flags
// run before the setters so a single patch can both clear and set.
type TablePatch struct {
	Status              *TableStatus
	CurrentSessionStart *time.Time
	ExpectedEndTime     *time.Time
	LastSessionEndedAt  *time.Time
	Reservation         *Reservation
	ClearSession        bool
	ClearReservation    bool
}

// ApplyTo returns a copy of t with the patch applied.
func (p TablePatch) ApplyTo(t Table) Table {
	if p.ClearSession {
		t.CurrentSessionStart = nil
		t.ExpectedEndTime = nil
	}
	if p.ClearReservation {
		t.Reservation = nil
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CurrentSessionStart != nil {
		t.CurrentSessionStart = timePtr(*p.CurrentSessionStart)
	}
	if p.ExpectedEndTime != nil {
		t.ExpectedEndTime = timePtr(*p.ExpectedEndTime)
	}
	if p.LastSessionEndedAt != nil {
		t.LastSessionEndedAt = timePtr(*p.LastSessionEndedAt)
	}
	if p.Reservation != nil {
		r := *p.Reservation
		t.Reservation = &r
	}
	return t
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// TableRecord is the persisted row behind a Table.
type TableRecord struct {
	ID                      uint       `gorm:"primaryKey"`
	Number                  int        `gorm:"not null;uniqueIndex"`
	Capacity                int        `gorm:"not null"`
	Status                  string     `gorm:"type:varchar(20);not null;default:'available';index"`
	CurrentSessionStart     *time.Time `gorm:"default:null"`
	ExpectedEndTime         *time.Time `gorm:"default:null"`
	LastSessionEndedAt      *time.Time `gorm:"default:null"`
	ReservationCustomerName *string    `gorm:"type:varchar(100)"`
	ReservationContact      *string    `gorm:"type:varchar(100)"`
	ReservationStartTime    *time.Time `gorm:"default:null"`
	CreatedAt               time.Time  `gorm:"not null"`
	UpdatedAt               time.Time  `gorm:"not null"`
}

func (TableRecord) TableName() string {
	return "tables"
}

func NewTableRecord(t Table) TableRecord {
	rec := TableRecord{
		ID:                  t.ID,
		Number:              t.Number,
		Capacity:            t.Capacity,
		Status:              string(t.Status),
		CurrentSessionStart: t.CurrentSessionStart,
		ExpectedEndTime:     t.ExpectedEndTime,
		LastSessionEndedAt:  t.LastSessionEndedAt,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if t.Reservation != nil {
		name, contact, start := t.Reservation.CustomerName, t.Reservation.Contact, t.Reservation.StartTime
		rec.ReservationCustomerName = &name
		rec.ReservationContact = &contact
		rec.ReservationStartTime = &start
	}
	return rec
}

func (r TableRecord) ToTable() Table {
	t := Table{
		ID:                  r.ID,
		Number:              r.Number,
		Capacity:            r.Capacity,
		Status:              TableStatus(r.Status),
		CurrentSessionStart: r.CurrentSessionStart,
		ExpectedEndTime:     r.ExpectedEndTime,
		LastSessionEndedAt:  r.LastSessionEndedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.ReservationCustomerName != nil {
		res := Reservation{CustomerName: *r.ReservationCustomerName}
		if r.ReservationContact != nil {
			res.Contact = *r.ReservationContact
		}
		if r.ReservationStartTime != nil {
			res.StartTime = *r.ReservationStartTime
		}
		t.Reservation = &res
	}
	return t
}
