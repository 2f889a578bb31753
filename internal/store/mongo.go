package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ripple/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	postsCollection = "posts"

	connectTimeout = 10 * time.Second
)

// Connect establishes a MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique email index on the users collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// mongoUserStore implements UserStore on a MongoDB collection.
type mongoUserStore struct {
	coll *mongo.Collection
}

// NewMongoUserStore creates a UserStore backed by the users collection of db.
func NewMongoUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{coll: db.Collection(usersCollection)}
}

func (s *mongoUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.coll.InsertOne(ctx, user)
	return err
}

func (s *mongoUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *mongoUserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []*models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *mongoUserStore) List(ctx context.Context) ([]*models.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var users []*models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *mongoUserStore) AddPostRef(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.addToSet(ctx, userID, "posts", postID)
}

func (s *mongoUserStore) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return s.addToSet(ctx, userID, "followers", followerID)
}

func (s *mongoUserStore) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return s.pull(ctx, userID, "followers", followerID)
}

func (s *mongoUserStore) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return s.addToSet(ctx, userID, "following", targetID)
}

func (s *mongoUserStore) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return s.pull(ctx, userID, "following", targetID)
}

func (s *mongoUserStore) AddLikeRef(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.prependToSet(ctx, userID, "likes", postID)
}

func (s *mongoUserStore) RemoveLikeRef(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.pull(ctx, userID, "likes", postID)
}

func (s *mongoUserStore) AddBookmark(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.prependToSet(ctx, userID, "bookmarks", postID)
}

func (s *mongoUserStore) RemoveBookmark(ctx context.Context, userID, postID primitive.ObjectID) error {
	return s.pull(ctx, userID, "bookmarks", postID)
}

func (s *mongoUserStore) RecordVisitor(ctx context.Context, userID, visitorID primitive.ObjectID) error {
	// Two idempotent writes: drop the old position, then a guarded prepend.
	// A crash in between leaves the visitor absent, which the next visit
	// repairs.
	if err := s.pull(ctx, userID, "visitors", visitorID); err != nil {
		return err
	}
	return s.prependToSet(ctx, userID, "visitors", visitorID)
}

func (s *mongoUserStore) PurgePostRefs(ctx context.Context, postID primitive.ObjectID) error {
	_, err := s.coll.UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{"likes": postID, "bookmarks": postID, "posts": postID},
	})
	return err
}

// addToSet is the plain idempotent set-add ($addToSet appends at the tail).
func (s *mongoUserStore) addToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// prependToSet is the most-recent-first variant of addToSet: the filter
// excludes documents that already contain the value, so the $position push
// stays idempotent.
func (s *mongoUserStore) prependToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": value}},
		bson.M{"$push": bson.M{field: bson.M{
			"$each":     bson.A{value},
			"$position": 0,
		}}},
	)
	return err
}

func (s *mongoUserStore) pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$pull": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// mongoPostStore implements PostStore on a MongoDB collection.
type mongoPostStore struct {
	coll *mongo.Collection
}

// NewMongoPostStore creates a PostStore backed by the posts collection of db.
func NewMongoPostStore(db *mongo.Database) PostStore {
	return &mongoPostStore{coll: db.Collection(postsCollection)}
}

func (s *mongoPostStore) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	_, err := s.coll.InsertOne(ctx, post)
	return err
}

func (s *mongoPostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *mongoPostStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var posts []*models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *mongoPostStore) ListByStatus(ctx context.Context, status models.PostStatus) ([]*models.Post, error) {
	cur, err := s.coll.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var posts []*models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *mongoPostStore) MarkApproved(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.PostStatusPending},
		bson.M{"$set": bson.M{"status": models.PostStatusApproved}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *mongoPostStore) AddLiker(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": bson.M{
			"$each":     bson.A{userID},
			"$position": 0,
		}}},
	)
	return err
}

func (s *mongoPostStore) RemoveLiker(ctx context.Context, postID, userID primitive.ObjectID) error {
	res, err := s.coll.UpdateByID(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (s *mongoPostStore) AddReaction(ctx context.Context, postID primitive.ObjectID, field ReactionField, userID primitive.ObjectID) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": postID, string(field): bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{string(field): bson.M{
			"$each":     bson.A{userID},
			"$position": 0,
		}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *mongoPostStore) AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) error {
	res, err := s.coll.UpdateByID(ctx, postID, bson.M{
		"$push": bson.M{"comments": bson.M{
			"$each":     bson.A{comment},
			"$position": 0,
		}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (s *mongoPostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoDocument
	}
	return nil
}
