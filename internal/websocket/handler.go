package websocket

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/util"
	"go.uber.org/zap"
)

const identityCheckTimeout = 3 * time.Second

var errNoToken = errors.New("no authentication token provided")

// TokenValidator resolves an access token to the user it was issued for
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// IdentityStore answers whether a user still exists
type IdentityStore interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// HandlerConfig controls how upgrades are authenticated
type HandlerConfig struct {
	// RequireAuth rejects upgrades without a valid token
	RequireAuth bool
	// AllowedOrigins are host patterns accepted in the Origin header; empty
	// disables the origin check
	AllowedOrigins []string
}

// Handler handles WebSocket upgrades and the presence REST endpoints
type Handler struct {
	hub        *Hub
	tokens     TokenValidator
	identities IdentityStore
	config     HandlerConfig
}

// NewHandler creates a new WebSocket handler. identities may be nil.
func NewHandler(hub *Hub, tokens TokenValidator, identities IdentityStore, config HandlerConfig) *Handler {
	return &Handler{
		hub:        hub,
		tokens:     tokens,
		identities: identities,
		config:     config,
	}
}

// HandleWebSocket upgrades the request and runs the connection until it closes.
// The token is read from ?token=... or an "Authorization: Bearer" header.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, err := h.authenticateRequest(c)
	if err != nil {
		if !errors.Is(err, errNoToken) || h.config.RequireAuth {
			logger.Log.Debug("WebSocket auth failed", logger.WithIP(c.ClientIP()), zap.Error(err))
			util.RespondUnauthorized(c, "authentication failed")
			return
		}
		userID = ""
	}

	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if len(h.config.AllowedOrigins) > 0 {
		opts.OriginPatterns = h.config.AllowedOrigins
	} else {
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(newUpgradeWriter(c.Writer), c.Request, opts)
	if err != nil {
		logger.Log.Debug("WebSocket upgrade failed", logger.WithIP(c.ClientIP()), zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, userID)
	client.RemoteAddr = c.ClientIP()
	client.UserAgent = c.GetHeader("User-Agent")

	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

// upgradeWriter sends the 101 on the connection's own writer and hijacks
// through gin, so gin records the response as written without flushing a
// second status line. It must not expose WriteHeaderNow: gin refuses to
// hijack once that has run.
type upgradeWriter struct {
	gin gin.ResponseWriter
	raw http.ResponseWriter
}

func newUpgradeWriter(w gin.ResponseWriter) *upgradeWriter {
	var raw http.ResponseWriter = w
	for {
		u, ok := raw.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			break
		}
		raw = u.Unwrap()
	}
	return &upgradeWriter{gin: w, raw: raw}
}

func (w *upgradeWriter) Header() http.Header {
	return w.gin.Header()
}

func (w *upgradeWriter) Write(b []byte) (int, error) {
	return w.gin.Write(b)
}

func (w *upgradeWriter) WriteHeader(code int) {
	w.gin.WriteHeader(code)
	if code == http.StatusSwitchingProtocols {
		w.raw.WriteHeader(code)
	}
}

func (w *upgradeWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.gin.Hijack()
}

// authenticateRequest returns the user id proven by the request's token
func (h *Handler) authenticateRequest(c *gin.Context) (string, error) {
	tokenString := c.Query("token")

	if header := c.GetHeader("Authorization"); header != "" {
		tokenString = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if tokenString == "" {
		return "", errNoToken
	}

	userID, err := h.tokens.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	if h.identities != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), identityCheckTimeout)
		defer cancel()

		exists, err := h.identities.Exists(ctx, userID)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", errors.New("token user no longer exists")
		}
	}

	return userID, nil
}

// HandleOnlineUsers returns the current online set
func (h *Handler) HandleOnlineUsers(c *gin.Context) {
	users := h.hub.Registry().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"users":     users,
		"count":     len(users),
		"timestamp": time.Now().UTC(),
	})
}

// HandleOnlineStatus checks if specific users are online
func (h *Handler) HandleOnlineStatus(c *gin.Context) {
	var req struct {
		UserIDs []string `json:"user_ids" binding:"required,max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "user_ids is required")
		return
	}

	registry := h.hub.Registry()
	statuses := make(map[string]bool, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		statuses[userID] = registry.IsOnline(userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"statuses":  statuses,
		"timestamp": time.Now().UTC(),
	})
}

// HandleMetrics returns hub counters for monitoring
func (h *Handler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket":   h.hub.GetMetrics(),
		"connections": h.hub.ClientInfos(),
		"timestamp":   time.Now().UTC(),
	})
}
