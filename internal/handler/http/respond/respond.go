// Package respond writes JSON responses and turns errors into messages that
// are safe to show a client. 5xx details never leave the process; they are
// logged with secrets masked.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"webwatch/internal/domain/entity"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSON writes v with the given status. A nil v writes headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// ヘッダ送信済みなのでログのみ
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Message pairs a client-facing text with the internal cause.
type Message struct {
	Text string
	Err  error
}

func (m *Message) Error() string {
	if m.Err != nil {
		return m.Text + ": " + m.Err.Error()
	}
	return m.Text
}

func (m *Message) Unwrap() error { return m.Err }

// WithMessage wraps err so SafeError shows text instead of err, whatever the
// status code.
func WithMessage(text string, err error) error {
	return &Message{Text: text, Err: err}
}

// safePhrases mark error texts written for users (validation, lookups).
var safePhrases = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"must not",
	"cannot be",
	"too long",
	"too short",
	"rate limit",
}

// SafeError writes err as an ErrorBody. The text is passed through only when
// it is known to be client-safe; anything else, and every 5xx without a
// Message, becomes a generic text and the original is logged.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	body, internal := clientBody(code, err)
	if internal != nil {
		slog.Default().Error("request failed",
			slog.Int("code", code),
			slog.String("client_message", body.Error),
			slog.String("error", SanitizeError(internal)))
	}
	JSON(w, code, body)
}

// clientBody returns what the client sees and, when something was hidden or
// there is an underlying cause, the error to log.
func clientBody(code int, err error) (ErrorBody, error) {
	var m *Message
	if errors.As(err, &m) {
		return ErrorBody{Error: m.Text}, m.Err
	}
	if code >= http.StatusInternalServerError {
		return ErrorBody{Error: "internal server error"}, err
	}

	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		return ErrorBody{Error: ve.Error(), Field: ve.Field}, nil
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, p := range safePhrases {
		if strings.Contains(lower, p) {
			return ErrorBody{Error: msg}, nil
		}
	}
	return ErrorBody{Error: strings.ToLower(http.StatusText(code))}, err
}
