package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/lobby"
	"github.com/mcoot/wordbomb/internal/web/ws"
)

func newPlayCmd() *cobra.Command {
	var (
		name   string
		create bool
		join   string
		linger time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in a room over the websocket",
		Long: `Connect to the game socket, create or join a room, and play from stdin.

Every line read from stdin is sent as a word for the current turn, except:
  /start                      Start the game (host only)
  /set roundTime=8 ...        Update settings (host only)
  /kick <player-id>           Kick a player (host only)
  /type <partial>             Send typing progress
  /quit                       Leave the room

Server events are printed as they arrive. When stdin ends the connection
stays open for --linger before disconnecting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = cfg.Username
			}
			if name == "" {
				return errors.New("--name is required (env: WORDBOMB_USERNAME)")
			}
			if create == (join != "") {
				return errors.New("exactly one of --create or --join is required")
			}
			return play(cmd.Context(), os.Stdin, name, join, linger)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username to play as (env: WORDBOMB_USERNAME)")
	cmd.Flags().BoolVar(&create, "create", false, "Create a new room")
	cmd.Flags().StringVar(&join, "join", "", "Join the room with this code")
	cmd.Flags().DurationVar(&linger, "linger", 2*time.Second, "How long to keep listening after stdin ends")

	return cmd
}

// session is one websocket connection to the game server
type session struct {
	conn *websocket.Conn
	out  *Output

	writeMu sync.Mutex

	// joined receives the outcome of the create or join request
	joined     chan error
	joinedOnce sync.Once

	mu   sync.Mutex
	code string
}

func play(ctx context.Context, in io.Reader, name, joinCode string, linger time.Duration) error {
	wsURL, err := cfg.WebsocketURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	s := &session{conn: conn, out: NewOutput(cfg.Output), code: joinCode, joined: make(chan error, 1)}
	defer s.close()

	readDone := make(chan error, 1)
	go func() { readDone <- s.readLoop() }()

	if joinCode == "" {
		err = s.send(ws.CommandCreateRoom, ws.CreateRoomPayload{Username: name})
	} else {
		err = s.send(ws.CommandJoinRoom, ws.JoinRoomPayload{Code: joinCode, Username: name})
	}
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-readDone:
		if err == nil {
			err = errors.New("connection closed before joining a room")
		}
		return err
	case err := <-s.joined:
		if err != nil {
			return err
		}
	case <-time.After(10 * time.Second):
		return errors.New("timed out waiting to join a room")
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readDone:
			return err
		case line, ok := <-lines:
			if !ok {
				return s.linger(ctx, readDone, linger)
			}
			quit, err := s.handleLine(strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// handleLine turns one line of input into a command
func (s *session) handleLine(line string) (quit bool, err error) {
	if line == "" {
		return false, nil
	}
	code := s.roomCode()

	if !strings.HasPrefix(line, "/") {
		return false, s.send(ws.CommandSubmitWord, ws.WordPayload{Code: code, Word: line})
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return true, nil
	case "/start":
		return false, s.send(ws.CommandStartGame, ws.RoomPayload{Code: code})
	case "/kick":
		if len(fields) != 2 {
			s.out.PrintError(errors.New("usage: /kick <player-id>"))
			return false, nil
		}
		return false, s.send(ws.CommandKickPlayer, ws.KickPlayerPayload{Code: code, TargetID: fields[1]})
	case "/type":
		return false, s.send(ws.CommandWordInput, ws.WordPayload{Code: code, Word: strings.TrimSpace(strings.TrimPrefix(line, "/type"))})
	case "/set":
		patch, err := parseSettings(fields[1:])
		if err != nil {
			s.out.PrintError(err)
			return false, nil
		}
		return false, s.send(ws.CommandUpdateSettings, ws.UpdateSettingsPayload{Code: code, Settings: patch})
	default:
		s.out.PrintError(fmt.Errorf("unknown command %s", fields[0]))
		return false, nil
	}
}

// parseSettings reads key=value pairs into a settings patch
func parseSettings(args []string) (lobby.SettingsPatch, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: /set key=value ...")
	}
	patch := lobby.SettingsPatch{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid setting %q, want key=value", arg)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("setting %s must be a number", key)
		}
		patch[key] = n
	}
	return patch, nil
}

// readLoop prints server events until the connection closes
func (s *session) readLoop() error {
	for {
		var msg struct {
			Type    model.EventType `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		s.track(msg.Type, msg.Payload)
		s.out.PrintEvent(string(msg.Type), msg.Payload)

		if msg.Type == model.EventKicked {
			return nil
		}
	}
}

// track remembers the room this session is in
func (s *session) track(t model.EventType, payload json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t {
	case model.EventRoomCreated, model.EventJoinedRoom:
		var p model.RoomCodePayload
		if json.Unmarshal(payload, &p) == nil {
			s.code = string(p.Code)
		}
		s.resolveJoin(nil)
	case model.EventError:
		var p model.ErrorPayload
		_ = json.Unmarshal(payload, &p)
		s.resolveJoin(&APIError{Code: p.Code, Message: p.Message})
	case model.EventRoomClosed, model.EventKicked:
		s.code = ""
	}
}

// resolveJoin reports the first join outcome; later ones are ordinary events
func (s *session) resolveJoin(err error) {
	s.joinedOnce.Do(func() { s.joined <- err })
}

func (s *session) roomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func (s *session) send(t ws.CommandType, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(ws.Command{Type: t, Payload: raw}); err != nil {
		return fmt.Errorf("send %s: %w", t, err)
	}
	client.logf("sent %s %s", t, raw)
	return nil
}

// linger keeps printing events for a while after input ends
func (s *session) linger(ctx context.Context, readDone <-chan error, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case err := <-readDone:
		return err
	case <-timer.C:
		return nil
	}
}

func (s *session) close() {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	_ = s.conn.Close()
}
