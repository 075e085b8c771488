package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/utils"
)

// Notifier delivers a customer-facing message. How it reaches the customer is
// up to the implementation.
type Notifier interface {
	Channel() string
	Send(ctx context.Context, notif models.Notification) error
}

// NewNotifier picks a provider by name: log (default), noop, fail or webhook.
// A bare http(s) URL is treated as a webhook.
func NewNotifier(kind, url, token string) Notifier {
	switch kind {
	case "", "stub", "log":
		return logNotifier{}
	case "noop":
		return noopNotifier{}
	case "fail":
		return failNotifier{}
	case "webhook":
		if url == "" {
			return logNotifier{}
		}
		return NewWebhookNotifier(url, token)
	default:
		if strings.HasPrefix(kind, "http://") || strings.HasPrefix(kind, "https://") {
			return NewWebhookNotifier(kind, token)
		}
		return logNotifier{}
	}
}

type logNotifier struct{}

func (logNotifier) Channel() string { return "log" }

func (logNotifier) Send(ctx context.Context, notif models.Notification) error {
	utils.InfoLogger.Printf("send notification to %s: %s", notif.Recipient, notif.Message)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Channel() string { return "noop" }

func (noopNotifier) Send(ctx context.Context, notif models.Notification) error {
	return nil
}

type failNotifier struct{}

func (failNotifier) Channel() string { return "fail" }

func (failNotifier) Send(ctx context.Context, notif models.Notification) error {
	return errors.New("provider failure")
}

// WebhookNotifier posts the notification as JSON.
type WebhookNotifier struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewWebhookNotifier(url, token string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *WebhookNotifier) Channel() string { return "webhook" }

func (w *WebhookNotifier) Send(ctx context.Context, notif models.Notification) error {
	body, err := json.Marshal(map[string]interface{}{
		"dispatch_id":  notif.DispatchID,
		"recipient":    notif.Recipient,
		"table_id":     notif.TableID,
		"table_number": notif.TableNumber,
		"message":      notif.Message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.Token)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected notification: status %d", resp.StatusCode)
	}
	return nil
}
