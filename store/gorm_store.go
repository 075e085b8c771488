package store

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/cafe-tables/models"
	"gorm.io/gorm"
)

// GormStore persists tables through gorm. Applies on the same table are
// serialised in-process and each one runs inside a single transaction
// together with its session history row.
type GormStore struct {
	DB    *gorm.DB
	locks *entityLocks
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, locks: newEntityLocks()}
}

func transportErr(op string, err error) error {
	return &models.TransportError{Op: op, Err: err}
}

func (s *GormStore) Create(ctx context.Context, table models.Table) (models.Table, error) {
	if err := validateNew(table); err != nil {
		return models.Table{}, err
	}

	rec := models.NewTableRecord(newTable(table))
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TableRecord{}).Where("number = ?", table.Number).Count(&count).Error; err != nil {
			return transportErr("count tables", err)
		}
		if count > 0 {
			return models.ErrDuplicateNumber
		}
		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrDuplicateNumber
			}
			return transportErr("create table", err)
		}
		return nil
	})
	if err != nil {
		return models.Table{}, err
	}
	return rec.ToTable(), nil
}

func (s *GormStore) GetAll(ctx context.Context) ([]models.Table, error) {
	var recs []models.TableRecord
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, transportErr("list tables", err)
	}
	out := make([]models.Table, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ToTable())
	}
	return out, nil
}

func (s *GormStore) GetByID(ctx context.Context, id uint) (models.Table, error) {
	rec, err := findTable(s.DB.WithContext(ctx), id)
	if err != nil {
		return models.Table{}, err
	}
	return rec.ToTable(), nil
}

func findTable(db *gorm.DB, id uint) (models.TableRecord, error) {
	var rec models.TableRecord
	if err := db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, &models.NotFoundError{ID: id}
		}
		return rec, transportErr("get table", err)
	}
	return rec, nil
}

func (s *GormStore) Apply(ctx context.Context, id uint, patch models.TablePatch) (models.Table, error) {
	return s.Mutate(ctx, id, func(models.Table) (models.TablePatch, error) {
		return patch, nil
	})
}

func (s *GormStore) Mutate(ctx context.Context, id uint, fn MutateFunc) (models.Table, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	var result models.Table
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findTable(tx, id)
		if err != nil {
			return err
		}
		current := rec.ToTable()

		patch, err := fn(current)
		if err != nil {
			return err
		}

		now := time.Now()
		patched := patch.ApplyTo(current)
		if err := checkPatched(id, patched); err != nil {
			return err
		}
		patched.UpdatedAt = now

		next := models.NewTableRecord(patched)
		if err := tx.Save(&next).Error; err != nil {
			return transportErr("save table", err)
		}
		if entry, ok := models.NewSessionLog(current, patched, now); ok {
			if err := tx.Create(&entry).Error; err != nil {
				return transportErr("record session", err)
			}
		}
		result = next.ToTable()
		return nil
	})
	if err != nil {
		return models.Table{}, err
	}
	return result, nil
}

func (s *GormStore) Delete(ctx context.Context, id uint, check func(models.Table) error) error {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findTable(tx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(rec.ToTable()); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.TableRecord{}, id).Error; err != nil {
			return transportErr("delete table", err)
		}
		return nil
	})
}

func (s *GormStore) ListSessions(ctx context.Context, tableID uint) ([]models.SessionLog, error) {
	var logs []models.SessionLog
	q := s.DB.WithContext(ctx).Order("ended_at DESC").Order("id DESC")
	if tableID != 0 {
		q = q.Where("table_id = ?", tableID)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, transportErr("list sessions", err)
	}
	return logs, nil
}

func (s *GormStore) SaveNotification(ctx context.Context, notif *models.Notification) error {
	if err := s.DB.WithContext(ctx).Create(notif).Error; err != nil {
		return transportErr("save notification", err)
	}
	return nil
}

func (s *GormStore) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notifs []models.Notification
	if err := s.DB.WithContext(ctx).Order("id DESC").Find(&notifs).Error; err != nil {
		return nil, transportErr("list notifications", err)
	}
	return notifs, nil
}

func (s *GormStore) GetNotification(ctx context.Context, id uint) (models.Notification, error) {
	var notif models.Notification
	if err := s.DB.WithContext(ctx).First(&notif, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notif, &models.NotFoundError{Resource: "notification", ID: id}
		}
		return notif, transportErr("get notification", err)
	}
	return notif, nil
}
