package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/cafe-tables/hub"
	"github.com/yeremiapane/cafe-tables/store"
	"github.com/yeremiapane/cafe-tables/utils"
)

// ProgressMonitor periodically publishes the progress of every table so
// dashboards can redraw their bars. It only reads; an overrun session stays
// occupied until someone ends it.
type ProgressMonitor struct {
	Store    store.Store
	Hub      Publisher
	Interval time.Duration
	Clock    func() time.Time
	StopChan chan struct{}
	stopOnce sync.Once
}

func NewProgressMonitor(st store.Store, pub Publisher) *ProgressMonitor {
	return &ProgressMonitor{
		Store:    st,
		Hub:      pub,
		Interval: 15 * time.Second,
		Clock:    time.Now,
		StopChan: make(chan struct{}),
	}
}

func (pm *ProgressMonitor) Start() {
	go func() {
		ticker := time.NewTicker(pm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				pm.Tick(context.Background())
			case <-pm.StopChan:
				return
			}
		}
	}()
}

func (pm *ProgressMonitor) Stop() {
	pm.stopOnce.Do(func() { close(pm.StopChan) })
}

// Tick publishes one progress snapshot and returns it.
func (pm *ProgressMonitor) Tick(ctx context.Context) []TableProgress {
	tables, err := pm.Store.GetAll(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("Error fetching tables for progress: %v", err)
		return nil
	}
	now := time.Now()
	if pm.Clock != nil {
		now = pm.Clock()
	}
	report := BuildProgress(tables, now)
	if pm.Hub != nil {
		pm.Hub.Publish(hub.EventTableProgress, report)
	}
	return report
}
