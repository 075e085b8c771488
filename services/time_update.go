package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/cafe-tables/hub"
	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/store"
	"github.com/yeremiapane/cafe-tables/utils"
)

type TimeUpdateRequest struct {
	ID              uint
	NewTime         time.Time
	NotifyCustomers bool
	Message         string
}

type TimeUpdateResult struct {
	Table    models.Table `json:"table"`
	Notified bool         `json:"notified"`
}

// TimeUpdateCoordinator moves a session's expected end time and optionally
// tells the customers at the table. Nothing is sent unless the engine
// accepted the new time.
type TimeUpdateCoordinator struct {
	Engine   *SessionEngine
	Notifier Notifier
	Store    store.Store
	Hub      Publisher
	Location *time.Location
}

func NewTimeUpdateCoordinator(engine *SessionEngine, notifier Notifier, st store.Store, pub Publisher) *TimeUpdateCoordinator {
	return &TimeUpdateCoordinator{
		Engine:   engine,
		Notifier: notifier,
		Store:    st,
		Hub:      pub,
		Location: time.Local,
	}
}

// DefaultMessage is used when the caller asks for a notification without text.
func DefaultMessage(tableNumber int, newTime time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf("Your table #%d session is now expected to end at %s.",
		tableNumber, newTime.In(loc).Format("15:04"))
}

func (c *TimeUpdateCoordinator) UpdateExpectedEnd(ctx context.Context, req TimeUpdateRequest) (TimeUpdateResult, error) {
	table, err := c.Engine.SetExpectedEndTime(ctx, req.ID, req.NewTime)
	if err != nil {
		return TimeUpdateResult{}, err
	}

	result := TimeUpdateResult{Table: table}
	if !req.NotifyCustomers || c.Notifier == nil {
		return result, nil
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = DefaultMessage(table.Number, req.NewTime, c.Location)
	}
	notif := models.Notification{
		DispatchID:  uuid.NewString(),
		TableID:     table.ID,
		TableNumber: table.Number,
		Recipient:   fmt.Sprintf("table:%d", table.Number),
		Message:     message,
		Channel:     c.Notifier.Channel(),
	}

	// The time change is committed at this point; a failed send only means
	// the customers were not told.
	if err := c.Notifier.Send(ctx, notif); err != nil {
		utils.ErrorLogger.Errorf("Notification for table %d not sent: %v", table.ID, err)
		return result, nil
	}
	result.Notified = true

	if c.Store != nil {
		if err := c.Store.SaveNotification(ctx, &notif); err != nil {
			utils.ErrorLogger.Errorf("Notification %s sent but not recorded: %v", notif.DispatchID, err)
		}
	}
	if c.Hub != nil {
		c.Hub.Publish(hub.EventCustomerNotification, notif)
	}
	utils.InfoLogger.Printf("Customers at table %d notified (dispatch=%s)", table.ID, notif.DispatchID)
	return result, nil
}
