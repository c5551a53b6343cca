package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/talentnet/backend/internal/cli/chat"
	"github.com/talentnet/backend/internal/cli/config"
	"github.com/talentnet/backend/internal/cli/credentials"
	"github.com/talentnet/backend/internal/cli/logger"
	"github.com/talentnet/backend/internal/cli/output"
)

var errServerClosed = errors.New("server closed the connection")

var chatTo string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Go online and exchange direct messages",
	Long: `Opens a realtime session as the logged-in user. Every line typed is
sent to the --to user. Commands:
  /to <user-id>   change who lines are sent to
  /who            list online users
  /quit           leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentials.Require()
		if err != nil {
			return err
		}
		wsURL, err := config.WebSocketURL()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backoff := chat.DefaultBackoff()
		backoff.Attempts = config.GetInt("ws.reconnect_attempts")

		r := newChatRunner(chat.Config{
			URL:               wsURL,
			Token:             creds.Token,
			HandshakeTimeout:  time.Duration(config.GetInt("api.timeout")) * time.Second,
			HeartbeatInterval: time.Duration(config.GetInt("ws.heartbeat_seconds")) * time.Second,
		}, creds.UserID, chatTo, readLines(os.Stdin), backoff)

		output.PrintInfo("Connecting as %s. Type /quit to leave.", creds.FullName)
		return r.run(ctx)
	},
}

// readLines streams trimmed lines from in until EOF
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return lines
}

type chatRunner struct {
	cfg     chat.Config
	userID  string
	peer    string
	lines   <-chan string
	backoff chat.Backoff
	online  []chat.OnlineUser
	quit    bool

	peerColor *color.Color
	sysColor  *color.Color
}

func newChatRunner(cfg chat.Config, userID, peer string, lines <-chan string, backoff chat.Backoff) *chatRunner {
	return &chatRunner{
		cfg:       cfg,
		userID:    userID,
		peer:      peer,
		lines:     lines,
		backoff:   backoff,
		peerColor: color.New(color.FgMagenta, color.Bold),
		sysColor:  color.New(color.FgHiBlack),
	}
}

// run keeps a session open until the user quits, reconnecting with backoff
// when the connection drops
func (r *chatRunner) run(ctx context.Context) error {
	attempt := 0
	for {
		s, err := chat.Dial(ctx, r.cfg)
		if err == nil {
			attempt = 0
			err = r.session(ctx, s)
			if err == nil {
				return nil
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		var rejected *chat.HandshakeError
		if errors.As(err, &rejected) && rejected.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("session token was rejected, run `talentctl login` again")
		}
		if !r.backoff.Allowed(attempt) {
			return fmt.Errorf("giving up after %d reconnect attempts: %w", attempt, err)
		}

		delay := r.backoff.Delay(attempt)
		attempt++
		logger.Warn("Realtime connection lost", "error", err, "attempt", attempt)
		output.PrintWarning("Connection lost (%v), retrying in %s", err, delay.Round(time.Second))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// session drives one connection. It returns nil when the user is done and
// an error when the connection failed.
func (r *chatRunner) session(ctx context.Context, s *chat.Session) error {
	defer func() { _ = s.Close() }()

	if err := s.Announce(r.userID); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-r.lines:
			if !ok {
				return nil
			}
			if err := r.handleLine(s, line); err != nil {
				return err
			}
			if r.quit {
				return nil
			}
		case f, ok := <-s.Events():
			if !ok {
				if err := s.Err(); err != nil {
					return err
				}
				return errServerClosed
			}
			r.handleFrame(f)
		}
	}
}

func (r *chatRunner) handleLine(s *chat.Session, line string) error {
	switch {
	case line == "":
		return nil
	case line == "/quit":
		r.quit = true
		return nil
	case line == "/who":
		r.printOnline()
		return nil
	case strings.HasPrefix(line, "/to"):
		peer := strings.TrimSpace(strings.TrimPrefix(line, "/to"))
		if peer == "" {
			output.PrintWarning("usage: /to <user-id>")
			return nil
		}
		r.peer = peer
		output.PrintInfo("Now talking to %s", peer)
		return nil
	case strings.HasPrefix(line, "/"):
		output.PrintWarning("unknown command %s", line)
		return nil
	}

	if r.peer == "" {
		output.PrintWarning("pick a recipient first with /to <user-id>")
		return nil
	}
	if !r.isOnline(r.peer) {
		output.PrintWarning("%s is offline, the message will not be delivered", r.peer)
	}
	return s.SendMessage(r.peer, line)
}

func (r *chatRunner) handleFrame(f chat.Frame) {
	switch f.Type {
	case chat.TypeDeliverMessage:
		d, err := f.Delivery()
		if err != nil {
			logger.Debug("Bad delivery frame", "error", err)
			return
		}
		r.peerColor.Fprintf(output.Writer, "%s: ", d.SenderID)
		fmt.Fprintln(output.Writer, d.Text)

	case chat.TypePresenceSnapshot:
		users, err := f.Snapshot()
		if err != nil {
			logger.Debug("Bad snapshot frame", "error", err)
			return
		}
		joined, left := chat.PresenceDiff(r.online, users)
		r.online = users
		for _, id := range joined {
			if id != r.userID {
				r.sysColor.Fprintf(output.Writer, "* %s is online\n", id)
			}
		}
		for _, id := range left {
			if id != r.userID {
				r.sysColor.Fprintf(output.Writer, "* %s went offline\n", id)
			}
		}

	case chat.TypeSystem:
		ev, err := f.System()
		if err != nil {
			return
		}
		switch ev.Event {
		case "connected":
			r.sysColor.Fprintln(output.Writer, "* connected")
		case "server_shutdown":
			output.PrintWarning("server is shutting down")
		}

	case chat.TypeError:
		info, err := f.ErrorBody()
		if err != nil {
			return
		}
		output.PrintError("%s: %s", info.Code, info.Message)

	case chat.TypePong:
		if p, err := f.Pong(); err == nil {
			logger.Debug("Heartbeat", "latency_ms", p.Latency)
		}
	}
}

func (r *chatRunner) isOnline(userID string) bool {
	for _, u := range r.online {
		if u.UserID == userID {
			return true
		}
	}
	return false
}

func (r *chatRunner) printOnline() {
	if len(r.online) == 0 {
		output.PrintInfo("Nobody is online")
		return
	}
	ids := make([]string, 0, len(r.online))
	for _, u := range r.online {
		ids = append(ids, u.UserID)
	}
	output.PrintInfo("Online: %s", strings.Join(ids, ", "))
}

func init() {
	chatCmd.Flags().StringVar(&chatTo, "to", "", "User id to send messages to")
	rootCmd.AddCommand(chatCmd)
}
