package service

import (
	"context"
	"strings"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReactionService keeps the append-only reaction marks and the comment log.
// Agrees and deserves are monotonic: unlike likes they never toggle off, and
// a repeated mark from the same user fails with ALREADY_REACTED.
type ReactionService struct {
	posts store.PostStore
	users store.UserStore
}

// NewReactionService returns a new ReactionService.
func NewReactionService(posts store.PostStore, users store.UserStore) *ReactionService {
	return &ReactionService{posts: posts, users: users}
}

// Agree marks the post as agreed-with by the actor and returns the updated
// agree set.
func (s *ReactionService) Agree(ctx context.Context, actorID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	post, err := s.react(ctx, actorID, postID, store.ReactionAgrees)
	if err != nil {
		return nil, err
	}
	return post.Agrees, nil
}

// Deserve marks the post as deserved by the actor and returns the updated
// deserve set.
func (s *ReactionService) Deserve(ctx context.Context, actorID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	post, err := s.react(ctx, actorID, postID, store.ReactionDeserves)
	if err != nil {
		return nil, err
	}
	return post.Deserves, nil
}

func (s *ReactionService) react(ctx context.Context, actorID, postID primitive.ObjectID, field store.ReactionField) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStoreErr(err, "Post", postID)
	}
	if !post.Approved() {
		return nil, models.NewInvalidStateError("Post is not approved")
	}

	added, err := s.posts.AddReaction(ctx, postID, field, actorID)
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	if !added {
		// The guarded add refused: the mark was already there, possibly put
		// there by a concurrent duplicate of this very request.
		return nil, models.NewAlreadyReactedError("User already reacted to this post")
	}

	cache.InvalidateApprovedFeed(ctx)

	updated, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStoreErr(err, "Post", postID)
	}
	return updated, nil
}

// Comment prepends a comment to the post's log and returns the updated log.
// The author's username and image are snapshotted into the comment at write
// time and never updated afterwards.
func (s *ReactionService) Comment(ctx context.Context, actorID, postID primitive.ObjectID, text string) ([]models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Text is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStoreErr(err, "Post", postID)
	}
	if !post.Approved() {
		return nil, models.NewInvalidStateError("Post is not approved")
	}

	author, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, wrapStoreErr(err, "User", actorID)
	}

	comment := models.Comment{
		UserID:    actorID,
		Name:      author.Username,
		Image:     author.Image,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, models.NewStoreError(err)
	}

	cache.InvalidateApprovedFeed(ctx)

	updated, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStoreErr(err, "Post", postID)
	}
	return updated.Comments, nil
}
