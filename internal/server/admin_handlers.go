package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetPendingPosts returns the moderation queue, most recent first.
func (s *Server) GetPendingPosts(c *fiber.Ctx) error {
	posts, err := s.moderation.PendingPosts(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// ApprovePost publishes a pending post. Authors cannot approve their own posts.
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.moderation.Approve(c.Context(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post approved"})
}

// RejectPost removes a pending post from the queue permanently.
func (s *Server) RejectPost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.moderation.Reject(c.Context(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post rejected"})
}
