package service

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowState is the resulting state of a follow toggle.
type FollowState string

const (
	StateFollowed   FollowState = "followed"
	StateUnfollowed FollowState = "unfollowed"
)

// GraphService maintains the mirrored relation edges: the follow edge between
// two users and the like edge between a user and a post. Each edge lives on
// both owning documents and is toggled with two ordered idempotent writes;
// there is no transaction spanning them.
type GraphService struct {
	users store.UserStore
	posts store.PostStore
}

// NewGraphService returns a new GraphService.
func NewGraphService(users store.UserStore, posts store.PostStore) *GraphService {
	return &GraphService{users: users, posts: posts}
}

// Follow toggles the follow edge between actor and target. The edge counts
// as present only when both sides agree (target.followers contains actor AND
// actor.following contains target). A one-sided edge is damage, and the
// toggle resolves it to "followed": the set-adds repair the missing side
// instead of an unfollow tearing down the intact one.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID primitive.ObjectID) (FollowState, error) {
	if actorID == targetID {
		return "", models.NewForbiddenError("Users cannot follow themselves")
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return "", wrapStoreErr(err, "User", actorID)
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return "", wrapStoreErr(err, "User", targetID)
	}

	var state FollowState
	if target.HasFollower(actorID) && actor.IsFollowing(targetID) {
		if err := s.users.RemoveFollower(ctx, targetID, actorID); err != nil {
			return "", models.NewStoreError(err)
		}
		if err := s.users.RemoveFollowing(ctx, actorID, targetID); err != nil {
			return "", models.NewStoreError(err)
		}
		state = StateUnfollowed
	} else {
		if err := s.users.AddFollower(ctx, targetID, actorID); err != nil {
			return "", models.NewStoreError(err)
		}
		if err := s.users.AddFollowing(ctx, actorID, targetID); err != nil {
			return "", models.NewStoreError(err)
		}
		state = StateFollowed
	}

	middleware.RelationToggles.WithLabelValues("follow", string(state)).Inc()
	cache.InvalidateUser(ctx, actorID)
	cache.InvalidateUser(ctx, targetID)
	return state, nil
}

// LikePost toggles the actor's membership in the post's likes, mirrored into
// the actor's global like index. Calling it twice is a well-defined unlike,
// never an error. New likes go to the front of both sets. Returns the
// updated liker list.
func (s *GraphService) LikePost(ctx context.Context, actorID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStoreErr(err, "Post", postID)
	}
	if !post.Approved() {
		return nil, models.NewInvalidStateError("Post is not approved")
	}

	var state string
	if post.LikedBy(actorID) {
		if err := s.posts.RemoveLiker(ctx, postID, actorID); err != nil {
			return nil, models.NewStoreError(err)
		}
		if err := s.users.RemoveLikeRef(ctx, actorID, postID); err != nil {
			return nil, models.NewStoreError(err)
		}
		state = "unliked"
	} else {
		if err := s.posts.AddLiker(ctx, postID, actorID); err != nil {
			return nil, models.NewStoreError(err)
		}
		if err := s.users.AddLikeRef(ctx, actorID, postID); err != nil {
			return nil, models.NewStoreError(err)
		}
		state = "liked"
	}

	middleware.RelationToggles.WithLabelValues("like", state).Inc()
	cache.InvalidateUser(ctx, actorID)
	cache.InvalidateApprovedFeed(ctx)

	updated, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStoreErr(err, "Post", postID)
	}
	return updated.Likes, nil
}

// Bookmark toggles the post in the actor's bookmarks. Only approved posts
// can be bookmarked. Returns true when the post ended up bookmarked.
func (s *GraphService) Bookmark(ctx context.Context, actorID, postID primitive.ObjectID) (bool, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, wrapStoreErr(err, "Post", postID)
	}
	if !post.Approved() {
		return false, models.NewInvalidStateError("Post is not approved")
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return false, wrapStoreErr(err, "User", actorID)
	}

	bookmarked := !models.ContainsID(actor.Bookmarks, postID)
	if bookmarked {
		err = s.users.AddBookmark(ctx, actorID, postID)
	} else {
		err = s.users.RemoveBookmark(ctx, actorID, postID)
	}
	if err != nil {
		return false, models.NewStoreError(err)
	}

	cache.InvalidateUser(ctx, actorID)
	return bookmarked, nil
}
