package service

import (
	"context"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationService governs the pending/approved lifecycle of posts.
// Approval and rejection are single-use: a second decision on an already
// decided post fails with INVALID_STATE rather than being silently ignored,
// so double-moderation bugs surface to the caller.
type ModerationService struct {
	posts store.PostStore
	users store.UserStore
}

// NewModerationService returns a new ModerationService.
func NewModerationService(posts store.PostStore, users store.UserStore) *ModerationService {
	return &ModerationService{posts: posts, users: users}
}

// Submit creates a new post in the pending state. The post is not added to
// the author's posts set here; that happens at approval time.
func (s *ModerationService) Submit(ctx context.Context, authorID primitive.ObjectID, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Text is required")
	}

	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return nil, wrapStoreErr(err, "User", authorID)
	}

	post := &models.Post{
		UserID:   authorID,
		Text:     text,
		Status:   models.PostStatusPending,
		Likes:    []primitive.ObjectID{},
		Agrees:   []primitive.ObjectID{},
		Deserves: []primitive.ObjectID{},
		Comments: []models.Comment{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewStoreError(err)
	}
	return post, nil
}

// PendingPosts returns the moderation queue, most recent first.
func (s *ModerationService) PendingPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.ListByStatus(ctx, models.PostStatusPending)
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

// Approve transitions a pending post to approved and records it in the
// author's posts set. The two writes hit different documents and are not
// atomic together; the status flip is a conditional single-document update
// (so concurrent approvals race safely) and the posts-set append is an
// idempotent set-add (so a crash between the writes heals on retry).
func (s *ModerationService) Approve(ctx context.Context, moderatorID, postID primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return wrapStoreErr(err, "Post", postID)
	}
	if post.UserID == moderatorID {
		return models.NewForbiddenError("Authors cannot moderate their own posts")
	}
	if post.Status != models.PostStatusPending {
		return models.NewInvalidStateError("Post is not pending approval")
	}

	matched, err := s.posts.MarkApproved(ctx, postID)
	if err != nil {
		return models.NewStoreError(err)
	}
	if !matched {
		// Someone else decided the post between our read and the update.
		return models.NewInvalidStateError("Post is not pending approval")
	}

	if err := s.users.AddPostRef(ctx, post.UserID, postID); err != nil {
		// The post is approved but not yet on the author's list. The caller
		// retries; the approved post then fails the pending check above, so
		// recovery goes through RepairAuthorRef instead.
		return models.NewStoreError(err)
	}

	middleware.ModerationDecisions.WithLabelValues("approved").Inc()
	cache.InvalidateApprovedFeed(ctx)
	cache.InvalidateUser(ctx, post.UserID)
	return nil
}

// RepairAuthorRef re-runs the author-side write of an approval. The append is
// a set-add, so calling it for an already-consistent post is a no-op. It is
// the convergence path for an approval that failed after the status flip.
func (s *ModerationService) RepairAuthorRef(ctx context.Context, postID primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return wrapStoreErr(err, "Post", postID)
	}
	if !post.Approved() {
		return models.NewInvalidStateError("Post is not approved")
	}
	if err := s.users.AddPostRef(ctx, post.UserID, postID); err != nil {
		return models.NewStoreError(err)
	}
	cache.InvalidateUser(ctx, post.UserID)
	return nil
}

// Reject deletes a pending post permanently. Its likes, reactions and
// comments go with the document; a never-approved post was never publicly
// indexed, so no cross-collection cleanup is needed.
func (s *ModerationService) Reject(ctx context.Context, moderatorID, postID primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return wrapStoreErr(err, "Post", postID)
	}
	if post.UserID == moderatorID {
		return models.NewForbiddenError("Authors cannot moderate their own posts")
	}
	if post.Status != models.PostStatusPending {
		return models.NewInvalidStateError("Post is not pending approval")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return wrapStoreErr(err, "Post", postID)
	}

	middleware.ModerationDecisions.WithLabelValues("rejected").Inc()
	return nil
}
