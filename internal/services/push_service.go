package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"clubcare/internal/metrics"

	"golang.org/x/oauth2/google"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// ErrPushUnavailable is reported when the server runs without FCM
// credentials. Callers holding a nil Pusher must fail sends with this
// instead of dereferencing the interface.
var ErrPushUnavailable = errors.New("push gateway not configured")

// Pusher delivers a push notification to a single device token.
// The FCM client implements it; tests substitute a fake.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

// PusherFunc adapts a function to the Pusher interface
type PusherFunc func(ctx context.Context, token, title, body string, data map[string]string) error

// Push implements Pusher
func (f PusherFunc) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	return f(ctx, token, title, body, data)
}

// FCMService sends notifications through the FCM HTTP v1 API, authenticated
// with a Google service account
type FCMService struct {
	client    *http.Client
	projectID string
	endpoint  string
}

// NewFCMService builds the FCM client from the service-account JSON file
// named by FCM_CREDENTIALS_FILE
func NewFCMService() (*FCMService, error) {
	credFile := os.Getenv("FCM_CREDENTIALS_FILE")
	if credFile == "" {
		return nil, fmt.Errorf("FCM_CREDENTIALS_FILE environment variable not set")
	}

	data, err := os.ReadFile(credFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read FCM credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(context.Background(), data, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FCM credentials: %w", err)
	}

	projectID := creds.ProjectID
	if envID := os.Getenv("FCM_PROJECT_ID"); envID != "" {
		projectID = envID
	}
	if projectID == "" {
		return nil, fmt.Errorf("FCM project ID not found in credentials or FCM_PROJECT_ID")
	}

	client := &http.Client{
		Transport: &oauthTransport{source: creds, base: http.DefaultTransport},
		Timeout:   15 * time.Second,
	}

	return &FCMService{
		client:    client,
		projectID: projectID,
		endpoint:  "https://fcm.googleapis.com",
	}, nil
}

// oauthTransport attaches the service-account access token to every request
type oauthTransport struct {
	source *google.Credentials
	base   http.RoundTripper
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.TokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain FCM access token: %w", err)
	}
	clone := req.Clone(req.Context())
	token.SetAuthHeader(clone)
	return t.base.RoundTrip(clone)
}

// fcmMessage is the FCM v1 request envelope
type fcmMessage struct {
	Message struct {
		Token        string            `json:"token"`
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data,omitempty"`
	} `json:"message"`
}

// Push sends one notification to one device token
func (s *FCMService) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("empty FCM token")
	}

	var msg fcmMessage
	msg.Message.Token = token
	msg.Message.Notification = map[string]string{"title": title, "body": body}
	msg.Message.Data = data

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode FCM message: %w", err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", s.endpoint, s.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build FCM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.PushDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("FCM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("FCM send failed with status %d: %s", resp.StatusCode, string(snippet))
	}

	return nil
}
