package core

import (
	"encoding/json"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DecodeAPIResponse reads a Bot API reply envelope. The HTTP status is not
// consulted: Telegram reports failures as ok=false with a JSON body.
func DecodeAPIResponse(r io.Reader) (tgbotapi.APIResponse, error) {
	var resp tgbotapi.APIResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return tgbotapi.APIResponse{}, fmt.Errorf("decode api response: %w", err)
	}
	return resp, nil
}
