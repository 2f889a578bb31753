package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStatus is the moderation state of a post. Rejection has no status of
// its own: a rejected post is deleted, so only pending and approved are
// representable.
type PostStatus string

const (
	// PostStatusPending marks a post awaiting moderation, invisible to
	// ordinary reads.
	PostStatusPending PostStatus = "pending"
	// PostStatusApproved marks a post visible to all read paths and open to
	// reactions and comments.
	PostStatusApproved PostStatus = "approved"
)

// Comment is an entry in a post's append-only comment log. Name and Image are
// snapshots of the author's profile taken at write time; they deliberately do
// not track later profile edits.
type Comment struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Post is the post document. Likes, Agrees and Deserves are sets of distinct
// user references; Likes is toggled, Agrees and Deserves are add-only.
// Comments is ordered newest first. UserID is the author and immutable after
// creation.
type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Text      string               `bson:"text" json:"text"`
	Status    PostStatus           `bson:"status" json:"status"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Agrees    []primitive.ObjectID `bson:"agrees" json:"agrees"`
	Deserves  []primitive.ObjectID `bson:"deserves" json:"deserves"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}

// Approved reports whether the post has passed moderation.
func (p *Post) Approved() bool {
	return p.Status == PostStatusApproved
}

// LikedBy reports whether userID is in the post's likes set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return ContainsID(p.Likes, userID)
}
