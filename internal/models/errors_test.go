package models

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidationError("bad input"), fiber.StatusBadRequest},
		{"invalid argument", NewInvalidArgumentError("bad id"), fiber.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("no token"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not yours"), fiber.StatusForbidden},
		{"not found", NewNotFoundError("Post", "abc"), fiber.StatusNotFound},
		{"invalid state", NewInvalidStateError("not pending"), fiber.StatusNotFound},
		{"already reacted", NewAlreadyReactedError("duplicate"), fiber.StatusNotFound},
		{"store failure", NewStoreError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("whatever"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusForError(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := NewStoreError(inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "socket closed")
}

func TestNewNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("User", "deadbeef")
	assert.Equal(t, "User with ID deadbeef not found", err.Message)
	assert.Equal(t, CodeNotFound, err.Code)
}
