// Package notify delivers decision notifications to requesters. Delivery
// is always best-effort: callers log failures and never let them block or
// reverse a review decision.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type Notifier interface {
	NotifyApproved(ctx context.Context, userID, requestType string) error
	NotifyDenied(ctx context.Context, userID, requestType, reason string) error
}

type Config struct {
	Provider     string
	WebhookURL   string
	WebhookToken string
}

func New(cfg Config) Notifier {
	switch cfg.Provider {
	case "", "log":
		return logNotifier{}
	case "noop":
		return noopNotifier{}
	case "fail":
		return failNotifier{}
	case "webhook":
		if cfg.WebhookURL == "" {
			return logNotifier{}
		}
		return newWebhookNotifier(cfg.WebhookURL, cfg.WebhookToken)
	default:
		if strings.HasPrefix(cfg.Provider, "http://") || strings.HasPrefix(cfg.Provider, "https://") {
			return newWebhookNotifier(cfg.Provider, cfg.WebhookToken)
		}
		return logNotifier{}
	}
}

type logNotifier struct{}

func (logNotifier) NotifyApproved(ctx context.Context, userID, requestType string) error {
	log.Printf("notify approved user=%s type=%s", userID, requestType)
	return nil
}

func (logNotifier) NotifyDenied(ctx context.Context, userID, requestType, reason string) error {
	log.Printf("notify denied user=%s type=%s reason=%q", userID, requestType, reason)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyApproved(context.Context, string, string) error { return nil }

func (noopNotifier) NotifyDenied(context.Context, string, string, string) error { return nil }

type failNotifier struct{}

func (failNotifier) NotifyApproved(context.Context, string, string) error {
	return errors.New("notifier failure")
}

func (failNotifier) NotifyDenied(context.Context, string, string, string) error {
	return errors.New("notifier failure")
}

type webhookNotifier struct {
	url    string
	token  string
	client *http.Client
}

func newWebhookNotifier(url, token string) *webhookNotifier {
	return &webhookNotifier{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *webhookNotifier) NotifyApproved(ctx context.Context, userID, requestType string) error {
	return n.post(ctx, map[string]string{
		"event":        "request.approved",
		"user_id":      userID,
		"request_type": requestType,
	})
}

func (n *webhookNotifier) NotifyDenied(ctx context.Context, userID, requestType, reason string) error {
	return n.post(ctx, map[string]string{
		"event":        "request.denied",
		"user_id":      userID,
		"request_type": requestType,
		"reason":       reason,
	})
}

func (n *webhookNotifier) post(ctx context.Context, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notifier rejected request: status %d", resp.StatusCode)
	}
	return nil
}
