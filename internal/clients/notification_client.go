package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// NotificationClient dispatches transactional email through the notification
// service. When no base URL is configured the client logs and drops sends,
// so environments without a mailer still work.
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewNotificationClient creates a new notification client
func NewNotificationClient(baseURL string, logger *logrus.Logger) *NotificationClient {
	return &NotificationClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.WithField("component", "notification-client"),
	}
}

type emailRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Template string `json:"template,omitempty"`
}

// SendContactConfirmation emails a contact confirmation token
func (c *NotificationClient) SendContactConfirmation(ctx context.Context, email, token string) error {
	return c.send(ctx, emailRequest{
		To:       email,
		Subject:  "Confirm your delivery contact",
		Body:     fmt.Sprintf("Use this token to confirm your delivery contact: %s (valid for 24 hours)", token),
		Template: "contact-confirmation",
	})
}

func (c *NotificationClient) send(ctx context.Context, req emailRequest) error {
	if c.baseURL == "" {
		c.logger.WithField("to", req.To).Warn("Notification service not configured, dropping email")
		return nil
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/notifications/email", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call notification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}
	return nil
}
