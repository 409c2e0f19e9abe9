package client

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// FieldMessages are the messages the backend reported for one field.
type FieldMessages struct {
	Field    string
	Messages []string
}

// ValidationError carries backend-reported field errors in response order.
type ValidationError struct {
	Message string
	Fields  []FieldMessages
}

func (e *ValidationError) Error() string {
	if msg := e.FirstMessage(); msg != "" {
		return fmt.Sprintf("%s: %s", ErrValidation, msg)
	}
	return ErrValidation.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FirstMessage is the first message of the first field, falling back to
// the top-level message. Empty when the response had neither.
func (e *ValidationError) FirstMessage() string {
	for _, f := range e.Fields {
		if len(f.Messages) > 0 {
			return f.Messages[0]
		}
	}
	return e.Message
}

// Field returns the messages reported for name, if any.
func (e *ValidationError) Field(name string) []string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Messages
		}
	}
	return nil
}

// NewValidationError builds a single-field error, used for checks made
// before a request is sent.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldMessages{{Field: field, Messages: []string{message}}}}
}

// StatusError is any non-2xx response without a more specific mapping.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// parseValidation reads a {"message": "...", "errors": {"field": ["msg"]}}
// body. gjson walks the object in document order, so "first field" means the
// first one the backend wrote. ok is false when the body has no errors object.
func parseValidation(body []byte) (*ValidationError, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}

	doc := gjson.ParseBytes(body)
	errs := doc.Get("errors")
	if !errs.IsObject() {
		return nil, false
	}

	ve := &ValidationError{Message: doc.Get("message").String()}
	errs.ForEach(func(key, value gjson.Result) bool {
		fm := FieldMessages{Field: key.String()}
		switch {
		case value.IsArray():
			for _, m := range value.Array() {
				fm.Messages = append(fm.Messages, m.String())
			}
		case value.Type == gjson.String:
			fm.Messages = []string{value.String()}
		}
		ve.Fields = append(ve.Fields, fm)
		return true
	})

	return ve, true
}

// maxBodyMessage caps, in bytes, a non-JSON body quoted in an error.
const maxBodyMessage = 200

// bodyMessage extracts a short description from an error body.
func bodyMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error"} {
			if m := gjson.GetBytes(body, path); m.Type == gjson.String {
				return m.String()
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyMessage {
		cut := maxBodyMessage
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
