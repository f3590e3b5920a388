package telegram_sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jdelaire/welcomebot/core"
)

const defaultBaseURL = "https://api.telegram.org"

// Sender posts messages to the Telegram Bot API as JSON.
type Sender struct {
	botToken string
	client   *http.Client
	baseURL  string
}

// New creates a sender for the given bot token. Requests are attempted once
// and carry no client-side timeout.
func New(botToken string) *Sender {
	return &Sender{
		botToken: botToken,
		client:   &http.Client{},
		baseURL:  defaultBaseURL,
	}
}

// WithBaseURL sets a custom base URL (for testing).
func (s *Sender) WithBaseURL(baseURL string) *Sender {
	s.baseURL = baseURL
	return s
}

// WithHTTPClient replaces the HTTP client.
func (s *Sender) WithHTTPClient(client *http.Client) *Sender {
	s.client = client
	return s
}

// SendMessage calls sendMessage and returns the ok flag of the response.
// A response with ok=false is not an error; a transport failure or a body
// that is not JSON is.
func (s *Sender) SendMessage(ctx context.Context, msg core.SendMessage) (bool, error) {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	apiResp, err := core.DecodeAPIResponse(resp.Body)
	if err != nil {
		return false, fmt.Errorf("sendMessage (status %d): %w", resp.StatusCode, err)
	}

	return apiResp.Ok, nil
}
