package server

import (
	"errors"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseObjectID extracts and validates an ObjectID path parameter.
// A malformed ID is a client error, not a missing resource.
func parseObjectID(c *fiber.Ctx, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(param))
	if err != nil {
		return primitive.NilObjectID, models.NewInvalidArgumentError("Invalid ID format")
	}
	return id, nil
}

// currentUserID returns the authenticated user's ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) primitive.ObjectID {
	return c.Locals("userID").(primitive.ObjectID)
}

// respondServiceError maps a service-layer error to the right HTTP response.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewStoreError(err)
	}
	return models.RespondWithError(c, models.StatusForError(appErr), appErr)
}
