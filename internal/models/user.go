package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAvatarURL is assigned to new accounts that did not upload an avatar.
const DefaultAvatarURL = "https://upload.wikimedia.org/wikipedia/commons/7/7c/Profile_avatar_placeholder_large.png"

// User is the account document. The relation fields (Posts, Bookmarks, Likes,
// Followers, Following, Visitors) are ordered reference sets embedded in the
// document itself; each is maintained with idempotent set operations so a
// crashed multi-document mutation converges on retry. Where order matters the
// sets are most-recent-first.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username  string               `bson:"username" json:"username"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Image     string               `bson:"image" json:"image"`
	Bio       string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Location  string               `bson:"location,omitempty" json:"location,omitempty"`
	Admin     bool                 `bson:"admin" json:"admin"`
	Posts     []primitive.ObjectID `bson:"posts" json:"posts"`
	Bookmarks []primitive.ObjectID `bson:"bookmarks" json:"bookmarks"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`
	Visitors  []primitive.ObjectID `bson:"visitors" json:"visitors"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}

// IsFollowing reports whether the user's following set contains id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return ContainsID(u.Following, id)
}

// HasFollower reports whether the user's followers set contains id.
func (u *User) HasFollower(id primitive.ObjectID) bool {
	return ContainsID(u.Followers, id)
}

// ContainsID reports whether ids contains id.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
