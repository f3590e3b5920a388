package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/jdelaire/welcomebot/internal/config"
)

const (
	// MaxUpdateBytes caps the webhook body. Telegram updates are a few KB.
	MaxUpdateBytes = 1 << 20
	logBodyLimit   = 200
)

type healthResponse struct {
	Status   string `json:"status"`
	TokenSet bool   `json:"token_set"`
}

// Handler serves the health check (GET) and the Telegram webhook (POST).
// It holds no per-request state and is safe for concurrent use.
type Handler struct {
	token  string
	sender MessageSender
	logger *slog.Logger
}

// NewHandler creates a Handler. The sender is only used when cfg carries a token.
func NewHandler(cfg config.Config, sender MessageSender, logger *slog.Logger) *Handler {
	return &Handler{
		token:  cfg.BotToken,
		sender: sender,
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("request_id", "req_"+uuid.New().String()[:8], "method", r.Method)
	logger.Info("received request")

	switch r.Method {
	case http.MethodGet:
		h.health(w)
	case http.MethodPost:
		h.webhook(w, r, logger)
	default:
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) health(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:   HealthStatus,
		TokenSet: h.token != "",
	})
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	if h.token == "" {
		h.fail(w, logger, tokenMissing())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUpdateBytes))
	if err != nil {
		h.fail(w, logger, malformed(fmt.Errorf("read body: %w", err)))
		return
	}

	// The reply is sent even if the caller hangs up first.
	ctx := context.WithoutCancel(r.Context())
	if err := h.handleUpdate(ctx, logger, body); err != nil {
		h.fail(w, logger, err)
		return
	}

	writeText(w, http.StatusOK, "OK")
}

// HandleUpdate runs the webhook logic on a raw update body: parse it and,
// for /start, send the welcome message once. It is used directly by the
// long-polling receiver.
func (h *Handler) HandleUpdate(ctx context.Context, body []byte) error {
	if h.token == "" {
		return tokenMissing()
	}
	return h.handleUpdate(ctx, h.logger, body)
}

func (h *Handler) handleUpdate(ctx context.Context, logger *slog.Logger, body []byte) error {
	update, err := ParseUpdate(body)
	if err != nil {
		return err
	}
	logger.Info("received update", "update", truncate(string(body), logBodyLimit))

	if !update.IsStart() {
		return nil
	}

	chatID, err := update.ChatID()
	if err != nil {
		return err
	}

	sent, err := h.sender.SendMessage(ctx, NewWelcome(chatID))
	if err != nil {
		return sendFailed(RedactToken(err, h.token))
	}

	result := "failed"
	if sent {
		result = "success"
	}
	logger.Info("sent message", "chat_id", chatID.String(), "result", result)
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := http.StatusInternalServerError, ""
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		code = e.TextCode
		if e.Code != 0 {
			status = e.Code
		}
	}
	logger.Error("webhook failed", "code", code, "error", ResponseMessage(err))
	writeText(w, status, ResponseMessage(err))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
