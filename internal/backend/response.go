package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrNetwork marks failures where no HTTP response was received.
var ErrNetwork = errors.New("network or server error")

// APIError is an HTTP-level failure reported by the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Response is the normalized result of a backend call.
type Response struct {
	// Data holds the decoded JSON payload, nil when the body was empty or not JSON.
	Data   any
	Error  string
	Status int

	parsed bool
}

// OK reports whether the backend answered with a success status.
func (r *Response) OK() bool {
	return r.Error == ""
}

// HasPayload reports whether the response body was valid JSON.
func (r *Response) HasPayload() bool {
	return r.parsed
}

// Err returns the HTTP failure as *APIError, or nil on success.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}

	return &APIError{Status: r.Status, Message: r.Error}
}

// Decode decodes the whole payload into target using json field names.
func (r *Response) Decode(target any) error {
	return decode(r.Data, target)
}

// DecodeField decodes the top-level payload field key into target.
// It reports false when the payload has no such field or the field is null.
func (r *Response) DecodeField(key string, target any) (bool, error) {
	value := r.Field(key)
	if value == nil {
		return false, nil
	}

	if err := decode(value, target); err != nil {
		return true, fmt.Errorf("decoding %q: %w", key, err)
	}

	return true, nil
}

// Field returns the top-level payload field key, nil when absent.
func (r *Response) Field(key string) any {
	object, ok := r.Data.(map[string]any)
	if !ok {
		return nil
	}

	return object[key]
}

func decode(input, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       jsonArrayString,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// jsonArrayString decodes list fields the backend stores as JSON text, e.g.
// "requirements": "[\"go\"]".
func jsonArrayString(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}

	text := strings.TrimSpace(reflect.ValueOf(data).String())
	if !strings.HasPrefix(text, "[") {
		return data, nil
	}

	var list []any
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return data, nil
	}

	return list, nil
}

// errorMessage picks the payload's message, then its error field, then the
// standard status text.
func errorMessage(data any, status int) string {
	if object, ok := data.(map[string]any); ok {
		for _, key := range []string{"message", "error"} {
			if msg, ok := object[key].(string); ok && msg != "" {
				return msg
			}
		}
	}

	if text := http.StatusText(status); text != "" {
		return text
	}

	return fmt.Sprintf("status %d", status)
}
