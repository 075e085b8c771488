package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-tables/hub"
	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/store"
	"github.com/yeremiapane/cafe-tables/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/yeremiapane/cafe-tables/services")

// Publisher receives an event after every committed change.
type Publisher interface {
	Publish(event string, data interface{})
}

// SessionEngine is the only writer of table status and session fields. Every
// command is checked against the transition table while the table is locked
// in the store.
type SessionEngine struct {
	Store store.Store
	Hub   Publisher
	Clock func() time.Time
}

func NewSessionEngine(st store.Store, pub Publisher) *SessionEngine {
	return &SessionEngine{Store: st, Hub: pub, Clock: time.Now}
}

func (e *SessionEngine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *SessionEngine) publish(event string, data interface{}) {
	if e.Hub != nil {
		e.Hub.Publish(event, data)
	}
}

func (e *SessionEngine) GetAll(ctx context.Context) ([]models.Table, error) {
	return e.Store.GetAll(ctx)
}

func (e *SessionEngine) GetByID(ctx context.Context, id uint) (models.Table, error) {
	return e.Store.GetByID(ctx, id)
}

// CreateTable adds a table in the available status.
func (e *SessionEngine) CreateTable(ctx context.Context, number, capacity int) (models.Table, error) {
	created, err := e.Store.Create(ctx, models.Table{Number: number, Capacity: capacity})
	if err != nil {
		return models.Table{}, err
	}
	utils.InfoLogger.Printf("New table created: #%d (capacity=%d)", created.Number, created.Capacity)
	e.publish(hub.EventTableCreate, created)
	return created, nil
}

// DeleteTable removes a table unless a session is running on it.
func (e *SessionEngine) DeleteTable(ctx context.Context, id uint) error {
	err := e.Store.Delete(ctx, id, func(current models.Table) error {
		if current.Status == models.StatusOccupied {
			return &models.IllegalTransitionError{ID: id, Current: current.Status, Event: models.EventDelete}
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.InfoLogger.Printf("Table %d deleted", id)
	e.publish(hub.EventTableDelete, map[string]interface{}{"table_id": id})
	return nil
}

func (e *SessionEngine) Reserve(ctx context.Context, id uint, details models.Reservation) (models.Table, error) {
	return e.fire(ctx, id, models.EventReserve, func(current models.Table) (models.TablePatch, error) {
		if _, err := legal(current, models.EventReserve); err != nil {
			return models.TablePatch{}, err
		}
		return e.patchFor(models.EventReserve, &details)
	})
}

func (e *SessionEngine) CancelReservation(ctx context.Context, id uint) (models.Table, error) {
	return e.simple(ctx, id, models.EventCancelReservation)
}

func (e *SessionEngine) StartSession(ctx context.Context, id uint) (models.Table, error) {
	return e.simple(ctx, id, models.EventStartSession)
}

func (e *SessionEngine) EndSession(ctx context.Context, id uint) (models.Table, error) {
	return e.simple(ctx, id, models.EventEndSession)
}

// ChangeStatus is the manual override path. The target is parsed here and
// must be reachable through exactly one legal event; reaching reserved still
// needs reservation details.
func (e *SessionEngine) ChangeStatus(ctx context.Context, id uint, target string, details *models.Reservation) (models.Table, error) {
	status, ok := models.ParseTableStatus(strings.TrimSpace(target))
	if !ok {
		return models.Table{}, &models.ValidationError{Field: "status", Reason: "must be one of available, reserved, occupied"}
	}
	return e.fire(ctx, id, models.EventChangeStatus, func(current models.Table) (models.TablePatch, error) {
		ev, ok := models.EventFor(current.Status, status)
		if !ok {
			return models.TablePatch{}, &models.IllegalTransitionError{
				ID: id, Current: current.Status, Event: models.EventChangeStatus, Target: status,
			}
		}
		return e.patchFor(ev, details)
	})
}

// SetExpectedEndTime only checks the new time against the session start, not
// against the current moment.
func (e *SessionEngine) SetExpectedEndTime(ctx context.Context, id uint, newTime time.Time) (models.Table, error) {
	return e.fire(ctx, id, models.EventSetExpectedEnd, func(current models.Table) (models.TablePatch, error) {
		if current.Status != models.StatusOccupied || current.CurrentSessionStart == nil {
			return models.TablePatch{}, &models.IllegalTransitionError{ID: id, Current: current.Status, Event: models.EventSetExpectedEnd}
		}
		if !newTime.After(*current.CurrentSessionStart) {
			return models.TablePatch{}, &models.InvalidTimeError{ID: id, SessionStart: *current.CurrentSessionStart, Requested: newTime}
		}
		return models.TablePatch{ExpectedEndTime: &newTime}, nil
	})
}

func (e *SessionEngine) simple(ctx context.Context, id uint, ev models.Event) (models.Table, error) {
	return e.fire(ctx, id, ev, func(current models.Table) (models.TablePatch, error) {
		if _, err := legal(current, ev); err != nil {
			return models.TablePatch{}, err
		}
		return e.patchFor(ev, nil)
	})
}

func legal(current models.Table, ev models.Event) (models.Transition, error) {
	tr, ok := models.TransitionFor(current.Status, ev)
	if !ok {
		return tr, &models.IllegalTransitionError{ID: current.ID, Current: current.Status, Event: ev}
	}
	return tr, nil
}

// patchFor builds the side effects of a legal event.
func (e *SessionEngine) patchFor(ev models.Event, details *models.Reservation) (models.TablePatch, error) {
	now := e.now()
	switch ev {
	case models.EventReserve:
		res, err := e.validReservation(details, now)
		if err != nil {
			return models.TablePatch{}, err
		}
		return models.TablePatch{Status: statusPtr(models.StatusReserved), Reservation: &res}, nil
	case models.EventCancelReservation:
		return models.TablePatch{Status: statusPtr(models.StatusAvailable), ClearReservation: true}, nil
	case models.EventStartSession:
		return models.TablePatch{
			Status:              statusPtr(models.StatusOccupied),
			CurrentSessionStart: &now,
			ClearReservation:    true,
		}, nil
	case models.EventEndSession:
		return models.TablePatch{
			Status:             statusPtr(models.StatusAvailable),
			ClearSession:       true,
			LastSessionEndedAt: &now,
		}, nil
	}
	return models.TablePatch{}, &models.ValidationError{Field: "event", Reason: "unsupported event " + string(ev)}
}

func (e *SessionEngine) validReservation(details *models.Reservation, now time.Time) (models.Reservation, error) {
	if details == nil {
		return models.Reservation{}, &models.ValidationError{Field: "reservation", Reason: "details are required to reserve a table"}
	}
	res := *details
	res.CustomerName = strings.TrimSpace(res.CustomerName)
	res.Contact = strings.TrimSpace(res.Contact)
	if res.CustomerName == "" {
		return models.Reservation{}, &models.ValidationError{Field: "customer_name", Reason: "is required"}
	}
	if res.StartTime.IsZero() {
		res.StartTime = now
	}
	return res, nil
}

func (e *SessionEngine) fire(ctx context.Context, id uint, ev models.Event, fn store.MutateFunc) (models.Table, error) {
	ctx, span := tracer.Start(ctx, "tables."+string(ev))
	defer span.End()
	span.SetAttributes(attribute.Int64("table.id", int64(id)))

	updated, err := e.Store.Mutate(ctx, id, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logFailure(id, ev, err)
		return models.Table{}, err
	}

	span.SetAttributes(attribute.String("table.status", string(updated.Status)))
	utils.InfoLogger.Printf("Table %d %s -> %s", id, ev, updated.Status)
	e.publish(hub.EventTableUpdate, updated)
	return updated, nil
}

func logFailure(id uint, ev models.Event, err error) {
	fields := logrus.Fields{"table_id": id, "event": ev}
	switch {
	case errors.Is(err, models.ErrInvariantViolation):
		utils.ErrorLogger.WithFields(fields).Errorf("Table invariant violated: %v", err)
	case errors.Is(err, models.ErrTransport):
		utils.ErrorLogger.WithFields(fields).Errorf("Table store failure: %v", err)
	default:
		utils.InfoLogger.WithFields(fields).Infof("Table command rejected: %v", err)
	}
}

func statusPtr(s models.TableStatus) *models.TableStatus {
	return &s
}
