package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wordbomb/internal/api"
	"github.com/mcoot/wordbomb/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "wbctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wbctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) args(args ...string) []string {
	return append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	cmd := exec.Command(r.binaryPath, r.args(args...)...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// player is a running "play" process whose stdin the test writes to
type player struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	events chan eventLine
}

type eventLine struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (r *cliRunner) startPlayer(t *testing.T, args ...string) *player {
	t.Helper()

	cmd := exec.Command(r.binaryPath, r.args(append([]string{"play", "--linger", "200ms"}, args...)...)...)
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	cmd.Stderr = os.Stderr
	require.NoError(t, cmd.Start())

	p := &player{cmd: cmd, stdin: stdin, events: make(chan eventLine, 64)}
	go func() {
		defer close(p.events)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			var ev eventLine
			if json.Unmarshal(scanner.Bytes(), &ev) == nil && ev.Event != "" {
				p.events <- ev
			}
		}
	}()

	t.Cleanup(func() {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})
	return p
}

// waitFor returns the first event of the given type, failing after a timeout
func (p *player) waitFor(t *testing.T, event string) eventLine {
	t.Helper()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-p.events:
			if !ok {
				t.Fatalf("player exited before %s", event)
			}
			if ev.Event == event {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", event)
		}
	}
}

func (p *player) send(t *testing.T, line string) {
	t.Helper()
	_, err := io.WriteString(p.stdin, line+"\n")
	require.NoError(t, err)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	projectRoot := findProjectRoot(t)
	err = app.LoadDictionary(context.Background(), filepath.Join(projectRoot, "data/words.txt"))
	require.NoError(t, err)

	server := api.NewServer(app.Router, api.DefaultServerConfig(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, listener)
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			cancel()
			if err := <-done; err != nil {
				t.Logf("server error: %v", err)
			}
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type healthResponse struct {
	Status           string `json:"status"`
	DictionaryLoaded bool   `json:"dictionary_loaded"`
	DictionaryWords  int    `json:"dictionary_words"`
	ActiveRooms      int    `json:"active_rooms"`
}

type roomListResponse struct {
	Rooms []struct {
		Code        string `json:"code"`
		State       string `json:"state"`
		PlayerCount int    `json:"player_count"`
	} `json:"rooms"`
}

type roomResponse struct {
	Code    string `json:"code"`
	State   string `json:"state"`
	HostID  string `json:"host_id"`
	Players []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		IsHost   bool   `json:"is_host"`
	} `json:"players"`
}

type historyResponse struct {
	Code  string            `json:"code"`
	Games []json.RawMessage `json:"games"`
}

type wordResponse struct {
	Word       string `json:"word"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.DictionaryLoaded)
	assert.Positive(t, resp.DictionaryWords)
	assert.Equal(t, 0, resp.ActiveRooms)
}

func TestCLI_WordCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("word", "árbol")
	require.NoError(t, err, "output: %s", output)

	var resp wordResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ARBOL", resp.Normalized)
	assert.True(t, resp.Valid)

	output, err = cli.run("word", "xqzw")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.False(t, resp.Valid)
}

func TestCLI_RoomNotFound(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("rooms", "get", "ZZZZ")
	assert.Error(t, err)
	assert.Contains(t, output, "ROOM_NOT_FOUND")

	output, err = cli.run("rooms", "list")
	require.NoError(t, err, "output: %s", output)

	var list roomListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	assert.Empty(t, list.Rooms)
}

func TestCLI_PlaySession(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Host creates a room
	host := cli.startPlayer(t, "--name", "Alice", "--create")
	created := host.waitFor(t, "ROOM_CREATED")

	var payload struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &payload))
	require.Len(t, payload.Code, 4)
	code := payload.Code

	// Second player joins by code, in lower case
	guest := cli.startPlayer(t, "--name", "Bob", "--join", strings.ToLower(code))
	guest.waitFor(t, "JOINED_ROOM")

	// The room is visible through the API
	output, err := cli.run("rooms", "get", code)
	require.NoError(t, err, "output: %s", output)

	var room roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Equal(t, code, room.Code)
	assert.Equal(t, "LOBBY", room.State)
	require.Len(t, room.Players, 2)
	assert.Equal(t, "Alice", room.Players[0].Username)
	assert.True(t, room.Players[0].IsHost)
	assert.Equal(t, "Bob", room.Players[1].Username)

	output, err = cli.run("rooms", "list")
	require.NoError(t, err, "output: %s", output)

	var list roomListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, 2, list.Rooms[0].PlayerCount)

	// Only the host may start; both players see the first turn
	guest.send(t, "/start")
	guest.waitFor(t, "ERROR")

	host.send(t, "/start")
	hostTurn := host.waitFor(t, "NEXT_TURN")
	guest.waitFor(t, "NEXT_TURN")

	var turn struct {
		ActivePlayerID string `json:"activePlayerId"`
		Constraint     string `json:"constraint"`
	}
	require.NoError(t, json.Unmarshal(hostTurn.Data, &turn))
	assert.Equal(t, room.Players[0].ID, turn.ActivePlayerID)
	assert.NotEmpty(t, turn.Constraint)

	output, err = cli.run("rooms", "get", code)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Equal(t, "PLAYING", room.State)

	// The host leaving mid-game ends it for the remaining player
	require.NoError(t, host.stdin.Close())
	guest.waitFor(t, "GAME_OVER")

	output, err = cli.run("rooms", "history", code)
	require.NoError(t, err, "output: %s", output)

	var history historyResponse
	require.NoError(t, json.Unmarshal([]byte(output), &history))
	assert.Len(t, history.Games, 1)
}

func TestCLI_PlayJoinUnknownRoom(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("play", "--name", "Carol", "--join", "QQQQ")
	assert.Error(t, err)
	assert.Contains(t, output, "ROOM_NOT_FOUND")
}
