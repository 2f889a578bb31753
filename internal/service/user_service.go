package service

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService provides account directory reads.
type UserService struct {
	users store.UserStore
}

// NewUserService returns a new UserService.
func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return users, nil
}

// Me returns the viewer's own profile, cache-aside.
func (s *UserService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(userID), &user, cache.UserTTL, func() error {
		u, fetchErr := s.users.GetByID(ctx, userID)
		if fetchErr != nil {
			return fetchErr
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "User", userID)
	}
	return &user, nil
}

// Get returns a profile. When the viewer is someone else, the visit is
// recorded by moving the viewer to the front of the owner's visitors set;
// failures there are logged and swallowed, a profile read should not break
// over visit bookkeeping.
func (s *UserService) Get(ctx context.Context, userID, viewerID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapStoreErr(err, "User", userID)
	}

	if viewerID != userID && !viewerID.IsZero() {
		if err := s.users.RecordVisitor(ctx, userID, viewerID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to record profile visitor",
				"profile_id", userID.Hex(), "visitor_id", viewerID.Hex(), "error", err)
		} else {
			cache.InvalidateUser(ctx, userID)
		}
	}

	return user, nil
}
