package service

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostService is the read-path visibility gate plus author-side deletion.
// Only approved posts are reachable through it; a pending post is
// indistinguishable from a missing one.
type PostService struct {
	posts store.PostStore
	users store.UserStore
}

// NewPostService returns a new PostService.
func NewPostService(posts store.PostStore, users store.UserStore) *PostService {
	return &PostService{posts: posts, users: users}
}

// ListApproved returns all approved posts, most recent first. The feed is
// served cache-aside from Redis and invalidated by every visibility-changing
// write.
func (s *PostService) ListApproved(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.ApprovedFeedKey, &posts, cache.FeedTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.posts.ListByStatus(ctx, models.PostStatusApproved)
		return fetchErr
	})
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

// GetByID returns an approved post. A pending post yields the same NOT_FOUND
// as a missing document so moderation state does not leak to viewers.
func (s *PostService) GetByID(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapStoreErr(err, "Post", postID)
	}
	if !post.Approved() {
		return nil, models.NewNotFoundError("Post", postID.Hex())
	}
	return post, nil
}

// PostsOf resolves a user's approved posts set, most recent first.
func (s *PostService) PostsOf(ctx context.Context, userID primitive.ObjectID) ([]*models.Post, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapStoreErr(err, "User", userID)
	}
	posts, err := s.posts.GetByIDs(ctx, user.Posts)
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

// Delete removes a post. Only the author may delete; deletion also purges
// the post id from every user's like and bookmark indices with a
// full-collection sweep, since no secondary index by post id exists. The
// sweep is a $pull, so a partial failure converges when the delete is
// retried.
func (s *PostService) Delete(ctx context.Context, actorID, postID primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return wrapStoreErr(err, "Post", postID)
	}
	if post.UserID != actorID {
		return models.NewForbiddenError("Only the author can delete a post")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return wrapStoreErr(err, "Post", postID)
	}
	if err := s.users.PurgePostRefs(ctx, postID); err != nil {
		return models.NewStoreError(err)
	}

	cache.InvalidateApprovedFeed(ctx)
	cache.InvalidateUser(ctx, actorID)
	return nil
}
