package store

import (
	"context"

	"github.com/yeremiapane/cafe-tables/models"
)

// MutateFunc computes a patch from the current table. It runs while the
// table is locked, so the table it sees is the one the patch lands on.
type MutateFunc func(current models.Table) (models.TablePatch, error)

// Store owns the canonical table records. Status and session fields only
// change through Apply or Mutate, both of which refuse patches that leave a
// table inconsistent.
type Store interface {
	Create(ctx context.Context, table models.Table) (models.Table, error)
	GetAll(ctx context.Context) ([]models.Table, error)
	GetByID(ctx context.Context, id uint) (models.Table, error)
	Apply(ctx context.Context, id uint, patch models.TablePatch) (models.Table, error)
	Mutate(ctx context.Context, id uint, fn MutateFunc) (models.Table, error)
	// Delete removes a table once check accepts its current state.
	Delete(ctx context.Context, id uint, check func(models.Table) error) error

	// ListSessions returns closed sessions, newest first. A zero tableID lists all tables.
	ListSessions(ctx context.Context, tableID uint) ([]models.SessionLog, error)

	SaveNotification(ctx context.Context, notif *models.Notification) error
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	GetNotification(ctx context.Context, id uint) (models.Notification, error)
}

func validateNew(table models.Table) error {
	if table.Number <= 0 {
		return &models.ValidationError{Field: "number", Reason: "must be a positive integer"}
	}
	if table.Capacity <= 0 {
		return &models.ValidationError{Field: "capacity", Reason: "must be a positive integer"}
	}
	return nil
}

// newTable resets everything the state machine owns.
func newTable(table models.Table) models.Table {
	return models.Table{
		Number:   table.Number,
		Capacity: table.Capacity,
		Status:   models.StatusAvailable,
	}
}

func checkPatched(id uint, patched models.Table) error {
	if reason := patched.Inconsistency(); reason != "" {
		return &models.InvariantViolation{ID: id, Reason: reason}
	}
	return nil
}
