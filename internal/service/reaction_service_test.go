package service

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReactionService_Agree(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark succeeds, second fails", func(t *testing.T) {
		f := newFixture()
		author := f.createUser(t, "alice")
		reactor := f.createUser(t, "bob")
		post := f.createPost(t, author.ID, models.PostStatusApproved)

		agrees, err := f.reactions.Agree(ctx, reactor.ID, post.ID)
		require.NoError(t, err)
		assert.Contains(t, agrees, reactor.ID)

		_, err = f.reactions.Agree(ctx, reactor.ID, post.ID)
		requireAppError(t, err, models.CodeAlreadyReacted)

		// the failed duplicate must not have changed the set
		stored, err := f.posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Agrees, 1)
	})

	t.Run("pending post", func(t *testing.T) {
		f := newFixture()
		author := f.createUser(t, "alice")
		reactor := f.createUser(t, "bob")
		post := f.createPost(t, author.ID, models.PostStatusPending)

		_, err := f.reactions.Agree(ctx, reactor.ID, post.ID)
		requireAppError(t, err, models.CodeInvalidState)
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture()
		reactor := f.createUser(t, "bob")

		_, err := f.reactions.Agree(ctx, reactor.ID, primitive.NewObjectID())
		requireAppError(t, err, models.CodeNotFound)
	})
}

func TestReactionService_AgreeAndDeserveAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := f.createUser(t, "alice")
	reactor := f.createUser(t, "bob")
	post := f.createPost(t, author.ID, models.PostStatusApproved)

	_, err := f.reactions.Agree(ctx, reactor.ID, post.ID)
	require.NoError(t, err)

	// an agree does not consume the deserve mark
	deserves, err := f.reactions.Deserve(ctx, reactor.ID, post.ID)
	require.NoError(t, err)
	assert.Contains(t, deserves, reactor.ID)

	_, err = f.reactions.Deserve(ctx, reactor.ID, post.ID)
	requireAppError(t, err, models.CodeAlreadyReacted)
}

func TestReactionService_Comment(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot and prepend", func(t *testing.T) {
		f := newFixture()
		author := f.createUser(t, "alice")
		commenter := f.createUser(t, "bob")
		post := f.createPost(t, author.ID, models.PostStatusApproved)

		comments, err := f.reactions.Comment(ctx, commenter.ID, post.ID, "first!")
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, commenter.ID, comments[0].UserID)
		assert.Equal(t, "bob", comments[0].Name)
		assert.Equal(t, models.DefaultAvatarURL, comments[0].Image)
		assert.False(t, comments[0].CreatedAt.IsZero())

		comments, err = f.reactions.Comment(ctx, commenter.ID, post.ID, "second!")
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "second!", comments[0].Text)
		assert.Equal(t, "first!", comments[1].Text)
	})

	t.Run("same user may comment repeatedly", func(t *testing.T) {
		f := newFixture()
		author := f.createUser(t, "alice")
		commenter := f.createUser(t, "bob")
		post := f.createPost(t, author.ID, models.PostStatusApproved)

		for i := 0; i < 3; i++ {
			_, err := f.reactions.Comment(ctx, commenter.ID, post.ID, "again")
			require.NoError(t, err)
		}

		stored, err := f.posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Comments, 3)
	})

	t.Run("blank text", func(t *testing.T) {
		f := newFixture()
		author := f.createUser(t, "alice")
		post := f.createPost(t, author.ID, models.PostStatusApproved)

		_, err := f.reactions.Comment(ctx, author.ID, post.ID, "  ")
		requireAppError(t, err, models.CodeValidation)
	})

	t.Run("pending post", func(t *testing.T) {
		f := newFixture()
		author := f.createUser(t, "alice")
		commenter := f.createUser(t, "bob")
		post := f.createPost(t, author.ID, models.PostStatusPending)

		_, err := f.reactions.Comment(ctx, commenter.ID, post.ID, "hello")
		requireAppError(t, err, models.CodeInvalidState)
	})
}
