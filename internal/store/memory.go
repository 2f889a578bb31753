package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ripple/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserStore is an in-memory UserStore used by tests and the seeder's
// dry-run mode. It mirrors the Mongo driver's semantics: single-document
// atomicity (the mutex stands in for it), idempotent set ops, and deep copies
// on every read so callers never alias stored state.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	order []primitive.ObjectID
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = copyUser(user)
	s.order = append(s.order, user.ID)
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNoDocument
	}
	return copyUser(user), nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, ErrNoDocument
}

func (s *MemoryUserStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			users = append(users, copyUser(user))
		}
	}
	return users, nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*models.User, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		users = append(users, copyUser(s.users[s.order[i]]))
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *MemoryUserStore) AddPostRef(_ context.Context, userID, postID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Posts = appendIfAbsent(u.Posts, postID)
	})
}

func (s *MemoryUserStore) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Followers = appendIfAbsent(u.Followers, followerID)
	})
}

func (s *MemoryUserStore) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Followers = removeID(u.Followers, followerID)
	})
}

func (s *MemoryUserStore) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Following = appendIfAbsent(u.Following, targetID)
	})
}

func (s *MemoryUserStore) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Following = removeID(u.Following, targetID)
	})
}

func (s *MemoryUserStore) AddLikeRef(_ context.Context, userID, postID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Likes = prependIfAbsent(u.Likes, postID)
	})
}

func (s *MemoryUserStore) RemoveLikeRef(_ context.Context, userID, postID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Likes = removeID(u.Likes, postID)
	})
}

func (s *MemoryUserStore) AddBookmark(_ context.Context, userID, postID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Bookmarks = prependIfAbsent(u.Bookmarks, postID)
	})
}

func (s *MemoryUserStore) RemoveBookmark(_ context.Context, userID, postID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Bookmarks = removeID(u.Bookmarks, postID)
	})
}

func (s *MemoryUserStore) RecordVisitor(_ context.Context, userID, visitorID primitive.ObjectID) error {
	return s.mutate(userID, func(u *models.User) {
		u.Visitors = prependIfAbsent(removeID(u.Visitors, visitorID), visitorID)
	})
}

func (s *MemoryUserStore) PurgePostRefs(_ context.Context, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		user.Likes = removeID(user.Likes, postID)
		user.Bookmarks = removeID(user.Bookmarks, postID)
		user.Posts = removeID(user.Posts, postID)
	}
	return nil
}

func (s *MemoryUserStore) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNoDocument
	}
	fn(user)
	return nil
}

// MemoryPostStore is the in-memory PostStore counterpart of MemoryUserStore.
type MemoryPostStore struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post
	order []primitive.ObjectID
}

// NewMemoryPostStore creates an empty in-memory post store.
func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (s *MemoryPostStore) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	s.posts[post.ID] = copyPost(post)
	s.order = append(s.order, post.ID)
	return nil
}

func (s *MemoryPostStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNoDocument
	}
	return copyPost(post), nil
}

func (s *MemoryPostStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		if post, ok := s.posts[id]; ok {
			posts = append(posts, copyPost(post))
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryPostStore) ListByStatus(_ context.Context, status models.PostStatus) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]*models.Post, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		if post := s.posts[s.order[i]]; post != nil && post.Status == status {
			posts = append(posts, copyPost(post))
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryPostStore) MarkApproved(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok || post.Status != models.PostStatusPending {
		return false, nil
	}
	post.Status = models.PostStatusApproved
	return true, nil
}

func (s *MemoryPostStore) AddLiker(_ context.Context, postID, userID primitive.ObjectID) error {
	return s.mutate(postID, func(p *models.Post) {
		p.Likes = prependIfAbsent(p.Likes, userID)
	})
}

func (s *MemoryPostStore) RemoveLiker(_ context.Context, postID, userID primitive.ObjectID) error {
	return s.mutate(postID, func(p *models.Post) {
		p.Likes = removeID(p.Likes, userID)
	})
}

func (s *MemoryPostStore) AddReaction(_ context.Context, postID primitive.ObjectID, field ReactionField, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return false, nil
	}
	set := &post.Agrees
	if field == ReactionDeserves {
		set = &post.Deserves
	}
	if models.ContainsID(*set, userID) {
		return false, nil
	}
	*set = append([]primitive.ObjectID{userID}, *set...)
	return true, nil
}

func (s *MemoryPostStore) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) error {
	return s.mutate(postID, func(p *models.Post) {
		p.Comments = append([]models.Comment{comment}, p.Comments...)
	})
}

func (s *MemoryPostStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrNoDocument
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryPostStore) mutate(id primitive.ObjectID, fn func(*models.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return ErrNoDocument
	}
	fn(post)
	return nil
}

func appendIfAbsent(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if models.ContainsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func prependIfAbsent(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if models.ContainsID(ids, id) {
		return ids
	}
	return append([]primitive.ObjectID{id}, ids...)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = append([]primitive.ObjectID(nil), u.Posts...)
	c.Bookmarks = append([]primitive.ObjectID(nil), u.Bookmarks...)
	c.Likes = append([]primitive.ObjectID(nil), u.Likes...)
	c.Followers = append([]primitive.ObjectID(nil), u.Followers...)
	c.Following = append([]primitive.ObjectID(nil), u.Following...)
	c.Visitors = append([]primitive.ObjectID(nil), u.Visitors...)
	return &c
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	c.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	c.Agrees = append([]primitive.ObjectID(nil), p.Agrees...)
	c.Deserves = append([]primitive.ObjectID(nil), p.Deserves...)
	c.Comments = append([]models.Comment(nil), p.Comments...)
	return &c
}
