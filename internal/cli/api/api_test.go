package api

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/talentnet/backend/internal/auth"
	"github.com/talentnet/backend/internal/database"
	"github.com/talentnet/backend/internal/handlers"
	"github.com/talentnet/backend/internal/middleware"
	"github.com/talentnet/backend/internal/presence"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/storage"
	"github.com/talentnet/backend/internal/websocket"
	"golang.org/x/crypto/bcrypt"
)

type ClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	registry *presence.Registry
	client   *Client
}

func (s *ClientTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite", ":memory:", false)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))

	users := repository.NewUserRepository(db)
	authService := auth.NewService(users, auth.NewTokenIssuer([]byte("cli-secret"), time.Hour))
	authService.SetHashCost(bcrypt.MinCost)

	s.registry = presence.NewRegistry(presence.PolicyFirstWins)
	ws := websocket.NewHandler(websocket.NewHub(s.registry), authService, users, websocket.HandlerConfig{})

	h := handlers.NewHandlers(authService, users)
	h.SetPresence(s.registry)
	h.SetSocial(repository.NewFollowRepository(db), repository.NewPostRepository(db))
	h.SetUploader(echoUploader{})
	requireAuth := middleware.AuthMiddleware(authService)

	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", requireAuth, h.Me)
	r.GET("/api/users/search", requireAuth, h.SearchUsers)
	r.POST("/api/users/upload/avatar", requireAuth, h.UploadAvatar)
	r.POST("/api/users/upload/resume", requireAuth, h.UploadResume)
	r.POST("/api/users/upload/cover", requireAuth, h.UploadCover)
	r.GET("/api/users/:id", h.GetUserProfile)
	r.POST("/api/users/:id/follow", requireAuth, h.FollowUser)
	r.DELETE("/api/users/:id/follow", requireAuth, h.UnfollowUser)
	r.GET("/api/users/:id/followers", h.GetFollowers)
	r.GET("/api/users/:id/following", h.GetFollowing)
	r.GET("/api/presence/online", requireAuth, ws.HandleOnlineUsers)
	r.POST("/api/presence/status", requireAuth, ws.HandleOnlineStatus)

	s.server = httptest.NewServer(r)
	s.client = New(s.server.URL, 5*time.Second)
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) register(email, role string) *AuthResponse {
	resp, err := s.client.Register(RegisterRequest{
		FullName: "Casey Jordan",
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	s.Require().NoError(err)
	return resp
}

func (s *ClientTestSuite) TestRegisterAndLogin() {
	registered := s.register("casey@example.com", "Director")
	s.NotEmpty(registered.Token)
	s.Equal("Director", registered.User.Role)
	s.True(registered.ExpiresAt.After(time.Now()))

	loggedIn, err := s.client.Login("casey@example.com", "password123")
	s.Require().NoError(err)
	s.Equal(registered.User.ID, loggedIn.User.ID)
}

func (s *ClientTestSuite) TestLoginFailure() {
	s.register("casey@example.com", "Director")

	_, err := s.client.Login("casey@example.com", "wrong-password")
	s.Require().Error(err)
	s.True(IsUnauthorized(err))

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("UNAUTHORIZED", apiErr.Code)
}

func (s *ClientTestSuite) TestRegisterValidationError() {
	_, err := s.client.Register(RegisterRequest{FullName: "X", Email: "x@example.com", Password: "password123", Role: "Juggler"})

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusUnprocessableEntity, apiErr.StatusCode)
	s.Equal("role", apiErr.Field)
}

func (s *ClientTestSuite) TestMeRequiresToken() {
	_, err := s.client.Me()
	s.True(IsUnauthorized(err))

	resp := s.register("casey@example.com", "Actor")
	s.client.SetAuthToken(resp.Token)

	me, err := s.client.Me()
	s.Require().NoError(err)
	s.Equal(resp.User.ID, me.User.ID)
	s.False(me.Online)
}

func (s *ClientTestSuite) TestProfileAndPresence() {
	resp := s.register("casey@example.com", "Actor")
	s.client.SetAuthToken(resp.Token)

	_, err := s.client.GetProfile("no-such-user")
	s.True(IsNotFound(err))

	s.registry.Register(resp.User.ID, "conn-1")

	profile, err := s.client.GetProfile(resp.User.ID)
	s.Require().NoError(err)
	s.True(profile.Online)

	online, err := s.client.OnlineUsers()
	s.Require().NoError(err)
	s.Equal([]OnlineEntry{{UserID: resp.User.ID, ConnectionID: "conn-1"}}, online)

	statuses, err := s.client.OnlineStatus([]string{resp.User.ID, "someone-else"})
	s.Require().NoError(err)
	s.Equal(map[string]bool{resp.User.ID: true, "someone-else": false}, statuses)
}

func (s *ClientTestSuite) TestSearchUsers() {
	resp := s.register("casey@example.com", "Actor")
	s.register("jordan@example.com", "Editor")
	s.client.SetAuthToken(resp.Token)

	found, err := s.client.SearchUsers(SearchParams{Role: "Editor"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Editor", found[0].Role)

	_, err = s.client.SearchUsers(SearchParams{})
	s.Error(err)
}

func (s *ClientTestSuite) TestFollowAndUnfollow() {
	target := s.register("target@example.com", "Director")
	me := s.register("casey@example.com", "Actor")
	s.client.SetAuthToken(me.Token)

	result, err := s.client.Follow(target.User.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), result.FollowersCount)

	_, err = s.client.Follow(target.User.ID)
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusBadRequest, apiErr.StatusCode)

	followers, err := s.client.Followers(target.User.ID)
	s.Require().NoError(err)
	s.Require().Len(followers, 1)
	s.Equal(me.User.ID, followers[0].ID)

	following, err := s.client.Following(me.User.ID)
	s.Require().NoError(err)
	s.Require().Len(following, 1)
	s.Equal(target.User.ID, following[0].ID)

	result, err = s.client.Unfollow(target.User.ID)
	s.Require().NoError(err)
	s.Zero(result.FollowersCount)

	_, err = s.client.Follow("no-such-user")
	s.True(IsNotFound(err))
}

func (s *ClientTestSuite) TestUpload() {
	me := s.register("casey@example.com", "Actor")
	s.client.SetAuthToken(me.Token)

	path := filepath.Join(s.T().TempDir(), "headshot.png")
	s.Require().NoError(os.WriteFile(path, []byte("png"), 0o600))

	url, err := s.client.Upload("avatar", path)
	s.Require().NoError(err)
	s.Equal("https://cdn.test/avatar/"+me.User.ID+"/headshot.png", url)

	profile, err := s.client.GetProfile(me.User.ID)
	s.Require().NoError(err)
	s.Equal(url, profile.ProfilePictureURL)

	_, err = s.client.Upload("resume", path)
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("resume", apiErr.Field)

	_, err = s.client.Upload("banner", path)
	s.Error(err)
}

// echoUploader reports a deterministic URL without storing anything
type echoUploader struct{}

func (echoUploader) Upload(_ context.Context, kind storage.Kind, userID string, _ multipart.File, header *multipart.FileHeader) (*storage.UploadResult, error) {
	key := string(kind) + "/" + userID + "/" + header.Filename
	return &storage.UploadResult{Key: key, URL: "https://cdn.test/" + key, Size: header.Size}, nil
}

func (echoUploader) Delete(context.Context, string) error { return nil }

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestParseErrorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Me()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "unknown_error", apiErr.Code)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
