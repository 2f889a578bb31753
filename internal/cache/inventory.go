package cache

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserKeyPrefix   = "user:%s"
	ApprovedFeedKey = "posts:approved"
)

const (
	UserTTL = 5 * time.Minute
	FeedTTL = 2 * time.Minute
)

func UserKey(userID primitive.ObjectID) string {
	return fmt.Sprintf(UserKeyPrefix, userID.Hex())
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID primitive.ObjectID) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateApprovedFeed drops the cached approved-posts feed. Called after
// any write that changes which posts are publicly visible or their reaction
// state.
func InvalidateApprovedFeed(ctx context.Context) {
	Invalidate(ctx, ApprovedFeedKey)
}
