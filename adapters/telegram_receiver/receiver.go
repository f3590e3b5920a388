package telegram_receiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jdelaire/welcomebot/core"
)

const (
	defaultBaseURL  = "https://api.telegram.org"
	longPollTimeout = 30
	httpTimeout     = 35 * time.Second
	errorBackoff    = 5 * time.Second
)

// UpdateHandler processes one raw update, as it would arrive on the webhook.
type UpdateHandler func(ctx context.Context, raw []byte) error

// pending is one update of a getUpdates batch: its id and the body handed
// to the UpdateHandler unchanged.
type pending struct {
	id  int64
	raw json.RawMessage
}

// Receiver long-polls Telegram and feeds every update to a handler. It is
// the alternative to the webhook when no public URL is available.
type Receiver struct {
	botToken string
	handle   UpdateHandler
	logger   *slog.Logger
	client   *http.Client
	baseURL  string
	backoff  time.Duration
	offset   int64
}

// New creates a Telegram receiver.
func New(botToken string, handle UpdateHandler, logger *slog.Logger) *Receiver {
	return &Receiver{
		botToken: botToken,
		handle:   handle,
		logger:   logger,
		client:   &http.Client{Timeout: httpTimeout},
		baseURL:  defaultBaseURL,
		backoff:  errorBackoff,
	}
}

// WithBaseURL overrides the Telegram API base URL (for testing).
func (r *Receiver) WithBaseURL(url string) *Receiver {
	r.baseURL = url
	return r
}

// WithErrorBackoff sets the pause after a failed poll.
func (r *Receiver) WithErrorBackoff(d time.Duration) *Receiver {
	r.backoff = d
	return r
}

// Start polls until ctx is cancelled. A failed poll is logged and retried
// after the backoff; a failed update is logged and never retried.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.Info("telegram receiver started")
	defer r.logger.Info("telegram receiver stopped")

	for ctx.Err() == nil {
		batch, err := r.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("poll failed", "offset", r.offset, "error", core.RedactToken(err, r.botToken))
			r.sleep(ctx, r.backoff)
			continue
		}
		r.dispatch(ctx, batch)
	}
	return nil
}

// dispatch runs the handler over a batch in order, moving the offset past
// each update whatever the outcome.
func (r *Receiver) dispatch(ctx context.Context, batch []pending) {
	for _, u := range batch {
		if err := r.handle(ctx, u.raw); err != nil {
			r.logger.Error("update failed", "update_id", u.id, "error", core.RedactToken(err, r.botToken))
		}
		r.offset = u.id + 1
	}
}

func (r *Receiver) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// fetch performs one getUpdates call. The batch is all or nothing: an
// update without a numeric update_id fails the poll, since the offset
// could not be moved past it.
func (r *Receiver) fetch(ctx context.Context) ([]pending, error) {
	query := url.Values{}
	query.Set("offset", strconv.FormatInt(r.offset, 10))
	query.Set("timeout", strconv.Itoa(longPollTimeout))
	endpoint := r.baseURL + "/bot" + r.botToken + "/getUpdates?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()

	apiResp, err := core.DecodeAPIResponse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("getUpdates (status %d): %w", resp.StatusCode, err)
	}
	if !apiResp.Ok {
		return nil, fmt.Errorf("getUpdates: %d %s", apiResp.ErrorCode, apiResp.Description)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(apiResp.Result, &raws); err != nil {
		return nil, fmt.Errorf("getUpdates result: %w", err)
	}

	batch := make([]pending, 0, len(raws))
	for i, raw := range raws {
		id, err := updateID(raw)
		if err != nil {
			return nil, fmt.Errorf("getUpdates result[%d]: %w", i, err)
		}
		batch = append(batch, pending{id: id, raw: raw})
	}
	return batch, nil
}

func updateID(raw json.RawMessage) (int64, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, err
	}
	v, ok := fields["update_id"]
	if !ok {
		return 0, fmt.Errorf("missing update_id")
	}
	var id int64
	if err := json.Unmarshal(v, &id); err != nil {
		return 0, fmt.Errorf("update_id: %w", err)
	}
	return id, nil
}
