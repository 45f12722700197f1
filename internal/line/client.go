package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"membersCardAPI/internal/apperrors"
)

// DefaultEndpoint is the LINE Platform API origin.
const DefaultEndpoint = "https://api.line.me"

// Client talks to the LINE Platform: id-token verification, push messages
// and mini-app service messages.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		Endpoint:   DefaultEndpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyResponse struct {
	Sub              string `json:"sub"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// VerifyIDToken exchanges a LIFF id token for the verified user id (the
// token's subject). An expired token is reported as apperrors.ErrTokenExpired
// so the boundary can answer 403; every other verification failure is a
// plain error.
func (c *Client) VerifyIDToken(ctx context.Context, idToken, channelID string) (string, error) {
	form := url.Values{}
	form.Set("id_token", idToken)
	form.Set("client_id", channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Endpoint+"/oauth2/v2.1/verify", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}

	var verified verifyResponse
	if err := json.Unmarshal(body, &verified); err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}

	if verified.Error != "" {
		if strings.Contains(verified.ErrorDescription, "expired") {
			return "", apperrors.ErrTokenExpired
		}
		return "", fmt.Errorf("verify id token: %s: %s", verified.Error, verified.ErrorDescription)
	}
	if verified.Sub == "" {
		return "", fmt.Errorf("verify id token: response has no subject (status %d)", resp.StatusCode)
	}

	return verified.Sub, nil
}

type pushRequest struct {
	To       string         `json:"to"`
	Messages []*FlexMessage `json:"messages"`
}

// SendPushMessage pushes one flex message to a user through the official
// account's messaging channel.
func (c *Client) SendPushMessage(ctx context.Context, accessToken, to string, message *FlexMessage) error {
	payload, err := json.Marshal(pushRequest{To: to, Messages: []*FlexMessage{message}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Endpoint+"/v2/bot/message/push", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	// Idempotency key: LINE deduplicates retried pushes by this header.
	req.Header.Set("X-Line-Retry-Key", uuid.NewString())

	return c.do(req, "push message")
}

type serviceMessageRequest struct {
	TemplateName      string            `json:"templateName"`
	Params            map[string]string `json:"params"`
	NotificationToken string            `json:"notificationToken"`
}

// SendServiceMessage sends a mini-app service message built from a fixed
// notification template.
func (c *Client) SendServiceMessage(ctx context.Context, accessToken, templateName string, params map[string]string, notificationToken string) error {
	payload, err := json.Marshal(serviceMessageRequest{
		TemplateName:      templateName,
		Params:            params,
		NotificationToken: notificationToken,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.Endpoint+"/message/v3/notifier/send?target=service", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.do(req, "service message")
}

func (c *Client) do(req *http.Request, op string) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(body))
	}
	return nil
}
