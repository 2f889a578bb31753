package server

import (
	"strings"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

type submitPostRequest struct {
	Text string `json:"text"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// GetPosts returns the feed of approved posts, most recent first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListApproved(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost returns a single approved post. Pending posts 404 like missing ones.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.GetByID(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// SubmitPost creates a new post in the pending state.
func (s *Server) SubmitPost(c *fiber.Ctx) error {
	var req submitPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.moderation.Submit(c.Context(), currentUserID(c), strings.TrimSpace(req.Text))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost removes a post. Only the author may delete their own post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.postService.Delete(c.Context(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// LikePost toggles the caller's like on an approved post.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	likes, err := s.graph.LikePost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"likes": likes})
}

// AgreePost records a one-time agree reaction on an approved post.
func (s *Server) AgreePost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	agrees, err := s.reactions.Agree(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"agrees": agrees})
}

// DeservePost records a one-time deserve reaction on an approved post.
func (s *Server) DeservePost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	deserves, err := s.reactions.Deserve(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"deserves": deserves})
}

// BookmarkPost toggles the post in the caller's bookmarks.
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	bookmarked, err := s.graph.Bookmark(c.Context(), currentUserID(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"bookmarked": bookmarked})
}

// CreateComment prepends a comment to an approved post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseObjectID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comments, err := s.reactions.Comment(c.Context(), currentUserID(c), postID, req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comments": comments})
}
