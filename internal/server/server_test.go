package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	app   *fiber.App
	srv   *Server
	users *store.MemoryUserStore
	posts *store.MemoryPostStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		JWTSecret: "test-secret",
		Port:      "8375",
		MongoURI:  "mongodb://localhost:27017",
		MongoDB:   "ripple_test",
		Env:       "test",
	}

	users := store.NewMemoryUserStore()
	posts := store.NewMemoryPostStore()
	srv := NewServerWithStores(cfg, users, posts, nil)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	return &testEnv{app: app, srv: srv, users: users, posts: posts}
}

func (e *testEnv) createUser(t *testing.T, username string, admin bool) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  string(hash),
		Image:     models.DefaultAvatarURL,
		Admin:     admin,
		Posts:     []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Likes:     []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		Visitors:  []primitive.ObjectID{},
	}
	require.NoError(t, e.users.Create(context.Background(), user))

	token, err := e.srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)

	resp := e.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var reg authResponse
	decodeBody(t, resp, &reg)
	assert.NotEmpty(t, reg.Token)
	require.NotNil(t, reg.User)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, models.DefaultAvatarURL, reg.User.Image)

	t.Run("duplicate email", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "password123",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var login authResponse
		decodeBody(t, resp, &login)
		assert.NotEmpty(t, login.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "nope-nope-nope",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "ghost@example.com",
			"password": "password123",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing fields", fiber.Map{"username": "bob"}},
		{"bad email", fiber.Map{"username": "bob", "email": "not-an-email", "password": "password123"}},
		{"short password", fiber.Map{"username": "bob", "email": "bob@example.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.request(t, fiber.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var body models.ErrorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, models.CodeValidation, body.Code)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		resp := e.request(t, fiber.MethodGet, "/api/posts", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := e.request(t, fiber.MethodGet, "/api/posts", "not.a.jwt", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		_, token := e.createUser(t, "alice", false)
		resp := e.request(t, fiber.MethodGet, "/api/posts", token, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestModerationFlow(t *testing.T) {
	e := newTestEnv(t)
	_, authorToken := e.createUser(t, "author", false)
	_, adminToken := e.createUser(t, "admin", true)
	_, readerToken := e.createUser(t, "reader", false)

	// submit goes into the pending queue
	resp := e.request(t, fiber.MethodPost, "/api/posts", authorToken, fiber.Map{
		"text": "please approve me",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, models.PostStatusPending, post.Status)
	postPath := "/api/posts/" + post.ID.Hex()

	// invisible to the feed and to direct reads while pending
	resp = e.request(t, fiber.MethodGet, "/api/posts", readerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var feed []models.Post
	decodeBody(t, resp, &feed)
	assert.Empty(t, feed)

	resp = e.request(t, fiber.MethodGet, postPath, readerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// reactions are refused while pending; 404 so state does not leak
	resp = e.request(t, fiber.MethodPost, postPath+"/like", readerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// admin sees it in the queue
	resp = e.request(t, fiber.MethodGet, "/api/admin/posts/pending", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var queue []models.Post
	decodeBody(t, resp, &queue)
	require.Len(t, queue, 1)
	assert.Equal(t, post.ID, queue[0].ID)

	// non-admin cannot touch the queue
	resp = e.request(t, fiber.MethodGet, "/api/admin/posts/pending", readerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// approve and the post becomes visible
	resp = e.request(t, fiber.MethodPut, "/api/admin/posts/"+post.ID.Hex()+"/approve", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.request(t, fiber.MethodGet, postPath, readerToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.request(t, fiber.MethodGet, "/api/posts", readerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, models.PostStatusApproved, feed[0].Status)

	// a second decision fails
	resp = e.request(t, fiber.MethodPut, "/api/admin/posts/"+post.ID.Hex()+"/approve", adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminCannotModerateOwnPost(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.createUser(t, "adminauthor", true)

	resp := e.request(t, fiber.MethodPost, "/api/posts", adminToken, fiber.Map{
		"text": "my own masterpiece",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	resp = e.request(t, fiber.MethodPut, "/api/admin/posts/"+post.ID.Hex()+"/approve", adminToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.request(t, fiber.MethodPut, "/api/admin/posts/"+post.ID.Hex()+"/reject", adminToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRejectFlow(t *testing.T) {
	e := newTestEnv(t)
	_, authorToken := e.createUser(t, "author", false)
	_, adminToken := e.createUser(t, "admin", true)

	resp := e.request(t, fiber.MethodPost, "/api/posts", authorToken, fiber.Map{
		"text": "borderline content",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	resp = e.request(t, fiber.MethodPut, "/api/admin/posts/"+post.ID.Hex()+"/reject", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// gone for good
	_, err := e.posts.GetByID(context.Background(), post.ID)
	assert.ErrorIs(t, err, store.ErrNoDocument)
}

func TestMalformedIDIsBadRequest(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.createUser(t, "alice", false)

	resp := e.request(t, fiber.MethodGet, "/api/posts/not-a-hex-id", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, models.CodeInvalidArgument, body.Code)
}

func TestReactionEndpoints(t *testing.T) {
	e := newTestEnv(t)
	author, _ := e.createUser(t, "author", false)
	_, readerToken := e.createUser(t, "reader", false)

	post := &models.Post{
		UserID:   author.ID,
		Text:     "react to me",
		Status:   models.PostStatusApproved,
		Likes:    []primitive.ObjectID{},
		Agrees:   []primitive.ObjectID{},
		Deserves: []primitive.ObjectID{},
		Comments: []models.Comment{},
	}
	require.NoError(t, e.posts.Create(context.Background(), post))
	path := "/api/posts/" + post.ID.Hex()

	t.Run("like toggles", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, path+"/like", readerToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Likes []primitive.ObjectID `json:"likes"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Likes, 1)

		resp = e.request(t, fiber.MethodPost, path+"/like", readerToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &body)
		assert.Empty(t, body.Likes)
	})

	t.Run("agree is single use", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, path+"/agree", readerToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = e.request(t, fiber.MethodPost, path+"/agree", readerToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, models.CodeAlreadyReacted, body.Code)
	})

	t.Run("comment", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, path+"/comments", readerToken, fiber.Map{
			"text": "nice one",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var body struct {
			Comments []models.Comment `json:"comments"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Comments, 1)
		assert.Equal(t, "reader", body.Comments[0].Name)
	})
}

func TestFollowEndpoint(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceToken := e.createUser(t, "alice", false)
	bob, _ := e.createUser(t, "bob", false)

	resp := e.request(t, fiber.MethodPost, "/api/users/"+bob.ID.Hex()+"/follow", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		State string `json:"state"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "followed", body.State)

	resp = e.request(t, fiber.MethodPost, "/api/users/"+bob.ID.Hex()+"/follow", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, "unfollowed", body.State)

	t.Run("self follow forbidden", func(t *testing.T) {
		resp := e.request(t, fiber.MethodPost, "/api/users/"+alice.ID.Hex()+"/follow", aliceToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestProfileVisit(t *testing.T) {
	e := newTestEnv(t)
	alice, aliceToken := e.createUser(t, "alice", false)
	bob, bobToken := e.createUser(t, "bob", false)

	resp := e.request(t, fiber.MethodGet, "/api/users/"+alice.ID.Hex(), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err := e.users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, stored.Visitors)

	// own profile reads do not count as visits
	resp = e.request(t, fiber.MethodGet, "/api/users/"+alice.ID.Hex(), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err = e.users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Visitors, 1)
}

func TestDeletePostEndpoint(t *testing.T) {
	e := newTestEnv(t)
	author, authorToken := e.createUser(t, "author", false)
	_, strangerToken := e.createUser(t, "stranger", false)

	post := &models.Post{
		UserID:   author.ID,
		Text:     "short lived",
		Status:   models.PostStatusApproved,
		Likes:    []primitive.ObjectID{},
		Agrees:   []primitive.ObjectID{},
		Deserves: []primitive.ObjectID{},
		Comments: []models.Comment{},
	}
	require.NoError(t, e.posts.Create(context.Background(), post))
	path := "/api/posts/" + post.ID.Hex()

	resp := e.request(t, fiber.MethodDelete, path, strangerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.request(t, fiber.MethodDelete, path, authorToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.request(t, fiber.MethodDelete, path, authorToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestExpiredTokenRejected(t *testing.T) {
	e := newTestEnv(t)
	user, _ := e.createUser(t, "alice", false)

	expired := expiredToken(t, e.srv.config.JWTSecret, user.ID)
	resp := e.request(t, fiber.MethodGet, "/api/posts", expired, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp := e.request(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// no mongo client wired in tests, the readiness check skips the ping
	resp = e.request(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func expiredToken(t *testing.T, secret string, userID primitive.ObjectID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.Hex(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
