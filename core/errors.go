package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to webhook failures. All of them surface as HTTP 500;
// the code only distinguishes them in logs and tests.
const (
	CodeTokenMissing = "TOKEN_MISSING"
	CodeMalformed    = "MALFORMED_UPDATE"
	CodeSendFailed   = "SEND_FAILED"
)

const (
	tokenMissingMessage = "Token missing"
	redactedToken       = "<redacted>"
)

func webhookError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return goerrors.New(message, category).
		WithCode(http.StatusInternalServerError).
		WithTextCode(textCode)
}

func webhookWrapError(source error, category goerrors.Category, message, textCode string) *goerrors.Error {
	return goerrors.Wrap(source, category, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(textCode)
}

func tokenMissing() *goerrors.Error {
	return webhookError(tokenMissingMessage, goerrors.CategoryOperation, CodeTokenMissing)
}

func malformed(err error) *goerrors.Error {
	return webhookWrapError(err, goerrors.CategoryBadInput, "parse update", CodeMalformed)
}

func missingChat() *goerrors.Error {
	return webhookError("message has no chat id", goerrors.CategoryBadInput, CodeMalformed)
}

func sendFailed(err error) *goerrors.Error {
	return webhookWrapError(err, goerrors.CategoryExternal, "send message", CodeSendFailed)
}

// IsTokenMissing reports whether err is the missing-token failure.
func IsTokenMissing(err error) bool { return hasCode(err, CodeTokenMissing) }

// IsMalformed reports whether err came from an unparseable update.
func IsMalformed(err error) bool { return hasCode(err, CodeMalformed) }

// IsDownstream reports whether err came from the Bot API call.
func IsDownstream(err error) bool { return hasCode(err, CodeSendFailed) }

func hasCode(err error, code string) bool {
	var e *goerrors.Error
	if !goerrors.As(err, &e) {
		return false
	}
	return e.TextCode == code
}

// ResponseMessage is the plain-text body returned for a failed webhook call:
// the message of the underlying failure, without the taxonomy prefix.
func ResponseMessage(err error) string {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		if e.Source != nil {
			return e.Source.Error()
		}
		return e.Message
	}
	return err.Error()
}

// redactedError hides the bot token in an error message while keeping the
// chain intact for errors.Is/As.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// RedactToken replaces every occurrence of token in err's message. Transport
// errors embed the request URL, and with it the bot token.
func RedactToken(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{
		msg: strings.ReplaceAll(err.Error(), token, redactedToken),
		err: err,
	}
}
