package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// Message turns an error returned by this package or the transport into a
// short sentence for the operator. nil yields "".
func Message(err error) string {
	if err == nil {
		return ""
	}

	var ve *client.ValidationError
	var fe *models.FieldError
	var se *client.StatusError

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email/phone or password"
	case errors.As(err, &ve) && ve.FirstMessage() != "":
		return ve.FirstMessage()
	case errors.Is(err, ErrRegistrationFailed):
		return "Registration failed. Please try again."
	case errors.Is(err, client.ErrValidation):
		return "The server rejected the submitted data."
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, client.ErrNotFound):
		return "The item no longer exists. Reload the list and try again."
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return "Server is unavailable. Check your connection and try again."
	case errors.Is(err, ErrInvalidPageSize):
		return "Page size must be a positive number."
	case errors.Is(err, models.ErrUnknownWindow):
		return "Unknown window, use week, month or year."
	case errors.As(err, &fe):
		return "Invalid value for " + fe.Field + ": " + fe.Err.Error()
	case errors.Is(err, models.ErrIncorrectField):
		return "Fields must be entered as name=value."
	case errors.As(err, &se):
		if se.Message != "" {
			return se.Message
		}
		return "The server could not complete the request."
	case errors.Is(err, ErrMalformedAuthReply):
		return "The server sent an unexpected response."
	}
	return "Something went wrong: " + err.Error()
}
