// Package store provides the document-store access layer. User and Post live
// in separate collections; the store offers find-by-id, field-scoped updates
// and atomic single-document writes, and nothing else — there are no
// cross-document transactions. Multi-document consistency is the services'
// problem and rests on these operations being idempotent (set-add/set-remove,
// never increments).
package store

import (
	"context"
	"errors"

	"ripple/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoDocument is returned when a lookup matches no document.
var ErrNoDocument = errors.New("store: no matching document")

// ReactionField names a monotonic reaction set on the post document.
type ReactionField string

const (
	ReactionAgrees   ReactionField = "agrees"
	ReactionDeserves ReactionField = "deserves"
)

// UserStore defines operations on the users collection. The relation
// mutations are single-document and idempotent: adding a reference that is
// already present is a no-op, as is removing one that is absent.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)

	// AddPostRef appends postID to the user's posts set ($addToSet).
	AddPostRef(ctx context.Context, userID, postID primitive.ObjectID) error

	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error

	// AddLikeRef prepends postID to the user's global like index unless it is
	// already there.
	AddLikeRef(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveLikeRef(ctx context.Context, userID, postID primitive.ObjectID) error

	AddBookmark(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveBookmark(ctx context.Context, userID, postID primitive.ObjectID) error

	// RecordVisitor moves visitorID to the front of the user's visitors set.
	RecordVisitor(ctx context.Context, userID, visitorID primitive.ObjectID) error

	// PurgePostRefs removes postID from every user's likes, bookmarks and
	// posts sets. Full-collection scan; there is no secondary index by
	// post id.
	PurgePostRefs(ctx context.Context, postID primitive.ObjectID) error
}

// PostStore defines operations on the posts collection.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error)
	// ListByStatus returns posts in the given state, most recent first.
	ListByStatus(ctx context.Context, status models.PostStatus) ([]*models.Post, error)

	// MarkApproved flips a pending post to approved. The update is
	// conditioned on the current status, so of two concurrent approvals
	// exactly one observes matched=true.
	MarkApproved(ctx context.Context, id primitive.ObjectID) (matched bool, err error)

	// AddLiker prepends userID to the post's likes unless already present.
	AddLiker(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLiker(ctx context.Context, postID, userID primitive.ObjectID) error

	// AddReaction prepends userID to the named reaction set. Returns false
	// without modifying anything when the user already reacted, which is what
	// makes the reaction monotonic even under concurrent duplicates.
	AddReaction(ctx context.Context, postID primitive.ObjectID, field ReactionField, userID primitive.ObjectID) (added bool, err error)

	// AddComment prepends a comment to the post's comment log.
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error

	Delete(ctx context.Context, id primitive.ObjectID) error
}
