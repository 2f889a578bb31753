package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetAllUsers returns the user directory.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	users, err := s.userService.List(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile returns the authenticated user's own profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.Me(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile returns a user's profile and records the viewer as a visitor.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.userService.Get(c.Context(), userID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserPosts returns a user's own posts, most recent first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	posts, err := s.postService.PostsOf(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// FollowUser toggles the follow relationship between the caller and the target.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	state, err := s.graph.Follow(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"state": state})
}
