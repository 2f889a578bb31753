package service

import (
	"context"
	"testing"

	"ripple/internal/models"
	"ripple/internal/store"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixture wires the services against fresh in-memory stores.
type fixture struct {
	users      *store.MemoryUserStore
	posts      *store.MemoryPostStore
	moderation *ModerationService
	graph      *GraphService
	reactions  *ReactionService
	postSvc    *PostService
	userSvc    *UserService
}

func newFixture() *fixture {
	users := store.NewMemoryUserStore()
	posts := store.NewMemoryPostStore()
	return &fixture{
		users:      users,
		posts:      posts,
		moderation: NewModerationService(posts, users),
		graph:      NewGraphService(users, posts),
		reactions:  NewReactionService(posts, users),
		postSvc:    NewPostService(posts, users),
		userSvc:    NewUserService(users),
	}
}

func (f *fixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Image:     models.DefaultAvatarURL,
		Posts:     []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Likes:     []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Visitors:  []primitive.ObjectID{},
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) createPost(t *testing.T, authorID primitive.ObjectID, status models.PostStatus) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:   authorID,
		Text:     "something happened today",
		Status:   status,
		Likes:    []primitive.ObjectID{},
		Agrees:   []primitive.ObjectID{},
		Deserves: []primitive.ObjectID{},
		Comments: []models.Comment{},
	}
	require.NoError(t, f.posts.Create(context.Background(), post))
	if status == models.PostStatusApproved {
		require.NoError(t, f.users.AddPostRef(context.Background(), authorID, post.ID))
	}
	return post
}

// requireAppError asserts that err carries the given application error code.
func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}
