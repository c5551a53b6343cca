package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	coderws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentnet/backend/internal/auth"
	"github.com/talentnet/backend/internal/config"
	"github.com/talentnet/backend/internal/database"
	"github.com/talentnet/backend/internal/handlers"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/presence"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/websocket"
	"golang.org/x/crypto/bcrypt"
)

const testFrontend = "http://localhost:5173"

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	router   *gin.Engine
	auth     *auth.Service
	registry *presence.Registry
	hub      *websocket.Hub
}

func newTestServer(t *testing.T, health map[string]healthCheck) *testServer {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	authService := auth.NewService(users, auth.NewTokenIssuer([]byte("test-secret"), 0))
	authService.SetHashCost(bcrypt.MinCost)

	registry := presence.NewRegistry(presence.PolicyFirstWins)
	hub := websocket.NewHub(registry)

	h := handlers.NewHandlers(authService, users)
	h.SetPresence(registry)
	h.SetSocial(repository.NewFollowRepository(db), repository.NewPostRepository(db))

	cfg := &config.Config{FrontendURL: testFrontend}
	router := setupRouter(routerDeps{
		config:   cfg,
		handlers: h,
		ws: websocket.NewHandler(hub, authService, users, websocket.HandlerConfig{
			RequireAuth:    true,
			AllowedOrigins: allowedOrigins(cfg.FrontendURL),
		}),
		tokens: authService,
		health: health,
	})

	return &testServer{router: router, auth: authService, registry: registry, hub: hub}
}

func (s *testServer) register(t *testing.T, email string) *auth.AuthResponse {
	t.Helper()
	resp, err := s.auth.Register(context.Background(), auth.RegisterRequest{
		FullName: "Test User",
		Email:    email,
		Password: "password123",
		Role:     "Actor",
	})
	require.NoError(t, err)
	return resp
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"localhost:5173"}, allowedOrigins("http://localhost:5173"))
	assert.Equal(t, []string{"talentnet.example"}, allowedOrigins("https://talentnet.example/app"))
	assert.Nil(t, allowedOrigins("not a url"))
	assert.Nil(t, allowedOrigins(""))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, map[string]healthCheck{
		"database": func(context.Context) error { return nil },
	})

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"database": "ok"}, body.Checks)
}

func TestHealthDegraded(t *testing.T) {
	s := newTestServer(t, map[string]healthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "connection refused", body.Checks["redis"])
}

func TestPrometheusEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	w := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestPresenceRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t, nil)
	user := s.register(t, "alice@example.com").User
	s.registry.Register(user.ID, "conn-1")

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/presence/online", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.register(t, "bob@example.com").Token
	req := httptest.NewRequest(http.MethodGet, "/api/presence/online", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = s.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Users []presence.Entry `json:"users"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, user.ID, body.Users[0].UserID)
}

func TestProfileShowsOnlineFlag(t *testing.T) {
	s := newTestServer(t, nil)
	user := s.register(t, "carol@example.com").User

	get := func() bool {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/users/"+user.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Online bool `json:"online"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Online
	}

	assert.False(t, get())
	s.registry.Register(user.ID, "conn-1")
	assert.True(t, get())
}

func TestSearchIsNotShadowedByProfileRoute(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register(t, "dave@example.com").Token

	req := httptest.NewRequest(http.MethodGet, "/api/users/search?role=Actor", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestSocialRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	ana := s.register(t, "ana@example.com")
	ben := s.register(t, "ben@example.com")

	authed := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+ben.Token)
		return s.do(req)
	}

	w := authed(http.MethodPost, "/api/users/"+ana.User.ID+"/follow", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"followers_count":1`)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/users/"+ana.User.ID+"/followers", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ben.User.ID)

	// upload is matched before /:id, so a body without a file is a 400 rather than a 404
	w = authed(http.MethodPost, "/api/users/upload/avatar", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = authed(http.MethodPost, "/api/posts", `{"title":"Audition tips"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))

	w = authed(http.MethodPut, "/api/posts/"+post.ID+"/like", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked":true`)

	w = authed(http.MethodGet, "/api/users/"+ben.User.ID+"/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusUnauthorized, s.do(httptest.NewRequest(http.MethodGet, "/api/posts", nil)).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", testFrontend)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := s.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testFrontend, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = s.do(req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestResponsesAreCompressed(t *testing.T) {
	s := newTestServer(t, nil)
	user := s.register(t, "erin@example.com").User

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+user.ID, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestWebSocketUpgradeRequiresToken(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := s.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

func readFrame(t *testing.T, ctx context.Context, conn *coderws.Conn, msgType string) *websocket.Message {
	t.Helper()
	for {
		var msg websocket.Message
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == msgType {
			return &msg
		}
	}
}

func TestWebSocketChatThroughRouter(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	go s.hub.Run()
	srv := httptest.NewServer(s.router)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token="
	aliceConn, resp, err := coderws.Dial(ctx, wsURL+alice.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	bobConn, _, err := coderws.Dial(ctx, wsURL+bob.Token, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = aliceConn.Close(coderws.StatusNormalClosure, "")
		_ = bobConn.Close(coderws.StatusNormalClosure, "")
		shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		_ = s.hub.Shutdown(shutdownCtx)
		srv.Close()
	})

	welcome := readFrame(t, ctx, aliceConn, websocket.MessageTypeSystem)
	var system websocket.SystemPayload
	require.NoError(t, welcome.ParsePayload(&system))
	assert.Equal(t, "connected", system.Event)

	require.NoError(t, wsjson.Write(ctx, aliceConn, websocket.NewMessage(websocket.MessageTypeAnnounce, nil)))
	require.NoError(t, wsjson.Write(ctx, bobConn, websocket.NewMessage(websocket.MessageTypeAnnounce, nil)))

	require.Eventually(t, func() bool {
		return s.registry.IsOnline(alice.User.ID) && s.registry.IsOnline(bob.User.ID)
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, wsjson.Write(ctx, bobConn, websocket.NewMessage(websocket.MessageTypeSendMessage, websocket.SendMessagePayload{
		ReceiverID: alice.User.ID,
		Text:       "callback on friday",
	})))

	delivered := readFrame(t, ctx, aliceConn, websocket.MessageTypeDeliverMessage)
	var payload websocket.DeliverMessagePayload
	require.NoError(t, delivered.ParsePayload(&payload))
	assert.Equal(t, bob.User.ID, payload.SenderID)
	assert.Equal(t, "callback on friday", payload.Text)

	require.NoError(t, bobConn.Close(coderws.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool {
		return !s.registry.IsOnline(bob.User.ID)
	}, 2*time.Second, 10*time.Millisecond)
}
