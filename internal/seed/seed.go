// Package seed provides helpers to create demo data for development and
// testing. Everything goes through the store interfaces so the same seeder
// works against Mongo and the in-memory driver.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"ripple/internal/models"
	"ripple/internal/store"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Options configuration for the seeder
type Options struct {
	NumUsers int
	NumPosts int
}

// Seeder populates the stores with fake but plausible data.
type Seeder struct {
	users store.UserStore
	posts store.PostStore
	rand  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided stores.
func NewSeeder(users store.UserStore, posts store.PostStore) *Seeder {
	src := time.Now().UnixNano()
	gofakeit.Seed(src)
	return &Seeder{
		users: users,
		posts: posts,
		rand:  rand.New(rand.NewSource(src)),
	}
}

// Seed populates the stores with users, posts, follows, reactions and
// comments. The first created user is an admin so the moderation queue can
// be exercised right away.
func (s *Seeder) Seed(ctx context.Context, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	users, err := s.CreateUsers(ctx, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := s.CreatePosts(ctx, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := s.WeaveFollowGraph(ctx, users); err != nil {
		return fmt.Errorf("failed to weave follow graph: %w", err)
	}

	if err := s.SprinkleReactions(ctx, users, posts); err != nil {
		return fmt.Errorf("failed to add reactions: %w", err)
	}

	log.Println("Seeding completed")
	return nil
}

// CreateUsers inserts n fake users. All share the password "password123" so
// any account can be used to log in during development.
func (s *Seeder) CreateUsers(ctx context.Context, n int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		username := strings.ToLower(gofakeit.Username())
		user := &models.User{
			ID:        primitive.NewObjectID(),
			Username:  username,
			Email:     fmt.Sprintf("%s%d@%s", username, i, gofakeit.DomainName()),
			Password:  string(hash),
			Image:     fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
			Bio:       gofakeit.Sentence(8),
			Location:  fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
			Admin:     i == 0,
			Posts:     []primitive.ObjectID{},
			Bookmarks: []primitive.ObjectID{},
			Likes:     []primitive.ObjectID{},
			Followers: []primitive.ObjectID{},
			Following: []primitive.ObjectID{},
			Visitors:  []primitive.ObjectID{},
			CreatedAt: s.spreadTime(180),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// CreatePosts inserts n posts by random authors. Roughly four out of five
// are approved, the rest stay in the moderation queue.
func (s *Seeder) CreatePosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		status := models.PostStatusApproved
		if s.rand.Intn(5) == 0 {
			status = models.PostStatusPending
		}

		post := &models.Post{
			ID:        primitive.NewObjectID(),
			UserID:    author.ID,
			Text:      gofakeit.Sentence(6 + s.rand.Intn(14)),
			Status:    status,
			Likes:     []primitive.ObjectID{},
			Agrees:    []primitive.ObjectID{},
			Deserves:  []primitive.ObjectID{},
			Comments:  []models.Comment{},
			CreatedAt: s.spreadTime(90),
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return nil, err
		}
		// only approved posts appear in the author's back-reference list
		if status == models.PostStatusApproved {
			if err := s.users.AddPostRef(ctx, author.ID, post.ID); err != nil {
				return nil, err
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// WeaveFollowGraph connects each user to a few random others, writing both
// sides of the relationship.
func (s *Seeder) WeaveFollowGraph(ctx context.Context, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	for _, user := range users {
		follows := 1 + s.rand.Intn(5)
		for j := 0; j < follows; j++ {
			target := users[s.rand.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			if err := s.users.AddFollowing(ctx, user.ID, target.ID); err != nil {
				return err
			}
			if err := s.users.AddFollower(ctx, target.ID, user.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// SprinkleReactions adds likes, agrees, deserves and comments to approved
// posts from random users.
func (s *Seeder) SprinkleReactions(ctx context.Context, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		if !post.Approved() {
			continue
		}
		reactors := s.rand.Intn(6)
		for j := 0; j < reactors; j++ {
			actor := users[s.rand.Intn(len(users))]

			switch s.rand.Intn(4) {
			case 0:
				if err := s.posts.AddLiker(ctx, post.ID, actor.ID); err != nil {
					return err
				}
				if err := s.users.AddLikeRef(ctx, actor.ID, post.ID); err != nil {
					return err
				}
			case 1:
				if _, err := s.posts.AddReaction(ctx, post.ID, store.ReactionAgrees, actor.ID); err != nil {
					return err
				}
			case 2:
				if _, err := s.posts.AddReaction(ctx, post.ID, store.ReactionDeserves, actor.ID); err != nil {
					return err
				}
			default:
				comment := models.Comment{
					UserID:    actor.ID,
					Name:      actor.Username,
					Image:     actor.Image,
					Text:      gofakeit.Sentence(4 + s.rand.Intn(10)),
					CreatedAt: time.Now().UTC(),
				}
				if err := s.posts.AddComment(ctx, post.ID, comment); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// spreadTime returns a timestamp up to maxDays in the past so seeded data
// does not all share one creation instant.
func (s *Seeder) spreadTime(maxDays int) time.Time {
	daysBack := s.rand.Intn(maxDays)
	hoursBack := s.rand.Intn(24)
	minsBack := s.rand.Intn(60)
	return time.Now().UTC().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)
}
