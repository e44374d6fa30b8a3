package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"
)

const userAgent = "Marquee/0.1.0"

// Service defines the notification surface exposed to the batch pipeline.
type Service interface {
	NotifyBatchStarted(ctx context.Context, count int) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	Test(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	endpoint := topic
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://ntfy.sh/" + endpoint
	}

	return &ntfyService{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
		batchEvents: cfg.Notifications.Batch,
		errorEvents: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	batchEvents bool
	errorEvents bool
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, count int) error {
	if !n.batchEvents {
		return nil
	}
	return n.send(ctx, payload{
		title:   "Marquee - Batch Started",
		message: fmt.Sprintf("Processing %d titles", count),
		tags:    []string{"marquee", "batch", "started"},
	})
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error {
	if !n.batchEvents {
		return nil
	}
	return n.send(ctx, payload{
		title:   "Marquee - Batch Completed",
		message: fmt.Sprintf("%d stored, %d failed in %s", succeeded, failed, duration.Round(time.Second)),
		tags:    []string{"marquee", "batch", "completed"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, context string) error {
	if !n.errorEvents {
		return nil
	}
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	if context = strings.TrimSpace(context); context != "" {
		message = context + ": " + message
	}
	return n.send(ctx, payload{
		title:    "Marquee - Error",
		message:  message,
		tags:     []string{"marquee", "error"},
		priority: "high",
	})
}

func (n *ntfyService) Test(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "Marquee - Test",
		message: "Notifications are configured correctly",
		tags:    []string{"marquee", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchStarted(context.Context, int) error { return nil }

func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error {
	return nil
}

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) Test(context.Context) error { return nil }
