package server

import (
	"strings"
	"time"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/store"
	"ripple/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if existing, err := s.users.GetByEmail(c.Context(), req.Email); err == nil && existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "Failed to hash password", "error", err)
		return respondServiceError(c, models.NewStoreError(err))
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		Image:     models.DefaultAvatarURL,
		Posts:     []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Likes:     []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Visitors:  []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(c.Context(), user); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "Failed to create user", "error", err)
		return respondServiceError(c, models.NewStoreError(err))
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return respondServiceError(c, models.NewStoreError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "User registered",
		"user_id", user.ID.Hex(), "username", user.Username)

	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login handles user authentication
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.users.GetByEmail(c.Context(), req.Email)
	if err != nil {
		if err == store.ErrNoDocument {
			// Same response as a wrong password so emails can't be enumerated
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid credentials"))
		}
		return respondServiceError(c, models.NewStoreError(err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return respondServiceError(c, models.NewStoreError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "User logged in", "user_id", user.ID.Hex())

	return c.JSON(authResponse{Token: token, User: user})
}
