package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintEvent outputs one server event. JSON output is one object per line so
// streams can be piped into other tools.
func (o *Output) PrintEvent(event string, data json.RawMessage) {
	now := time.Now()

	if o.format == "json" {
		if !json.Valid(data) {
			data, _ = json.Marshal(string(data))
		}
		line, _ := json.Marshal(Event{Time: now, Event: event, Data: data})
		fmt.Println(string(line))
		return
	}

	// Truncate data if it's too long for display
	display := strings.ReplaceAll(string(data), "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), event, display)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case RoomList:
		o.printRoomList(v)
	case Room:
		o.printRoom(v)
	case History:
		o.printHistory(v)
	case WordCheck:
		o.printWordCheck(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Event is one server event as printed by events and play
type Event struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HealthResult response type (matches API)
type HealthResult struct {
	Status           string `json:"status"`
	DictionaryLoaded bool   `json:"dictionary_loaded"`
	DictionaryWords  int    `json:"dictionary_words"`
	ActiveRooms      int    `json:"active_rooms"`
}

// Player response type
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
	Lives    int    `json:"lives"`
	IsAlive  bool   `json:"is_alive"`
}

// Settings response type
type Settings struct {
	RoundTimeSeconds int `json:"round_time_seconds"`
	StartingLives    int `json:"starting_lives"`
	MaxPlayers       int `json:"max_players"`
}

// RoomSummary response type
type RoomSummary struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// Room response type
type Room struct {
	Code           string    `json:"code"`
	State          string    `json:"state"`
	HostID         string    `json:"host_id"`
	Settings       Settings  `json:"settings"`
	Players        []Player  `json:"players"`
	ActivePlayerID string    `json:"active_player_id,omitempty"`
	Constraint     string    `json:"constraint,omitempty"`
	UsedWords      []string  `json:"used_words,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// GameSummary response type
type GameSummary struct {
	Winner      string    `json:"winner"`
	WinnerID    *string   `json:"winner_id"`
	Players     []Player  `json:"players"`
	WordsPlayed []string  `json:"words_played"`
	Turns       int       `json:"turns"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
}

// History response type
type History struct {
	Code  string        `json:"code"`
	Games []GameSummary `json:"games"`
}

// WordCheck response type
type WordCheck struct {
	Word       string `json:"word"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.DictionaryLoaded {
		fmt.Printf("Dictionary: %d words\n", h.DictionaryWords)
	} else {
		fmt.Println("Dictionary: not loaded")
	}
	fmt.Printf("Active Rooms: %d\n", h.ActiveRooms)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No active rooms")
		return
	}
	fmt.Printf("%-6s %-8s %s\n", "CODE", "STATE", "PLAYERS")
	for _, r := range l.Rooms {
		fmt.Printf("%-6s %-8s %d/%d\n", r.Code, r.State, r.PlayerCount, r.MaxPlayers)
	}
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("State: %s\n", r.State)
	fmt.Printf("Settings: %ds turns, %d lives, up to %d players\n",
		r.Settings.RoundTimeSeconds, r.Settings.StartingLives, r.Settings.MaxPlayers)
	if r.Constraint != "" {
		fmt.Printf("Constraint: %s\n", r.Constraint)
	}

	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.ID == r.ActivePlayerID {
			tags = append(tags, "active")
		}
		if r.State != "LOBBY" && !p.IsAlive {
			tags = append(tags, "out")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Printf("  - %s (%s) - %s%s\n", p.Username, p.ID, strings.Repeat("♥", p.Lives), tagStr)
	}

	if len(r.UsedWords) > 0 {
		fmt.Printf("Used Words: %s\n", strings.Join(r.UsedWords, ", "))
	}
}

func (o *Output) printHistory(h History) {
	if len(h.Games) == 0 {
		fmt.Printf("No finished games in %s\n", h.Code)
		return
	}
	fmt.Printf("Games in %s (%d):\n", h.Code, len(h.Games))
	for i, g := range h.Games {
		winner := g.Winner
		if winner == "" {
			winner = "nobody"
		}
		fmt.Printf("  %d. %s - winner: %s, %d turns, %d words (%s)\n",
			i+1, g.EndedAt.Format("2006-01-02 15:04"), winner, g.Turns, len(g.WordsPlayed),
			g.EndedAt.Sub(g.StartedAt).Round(time.Second))
	}
}

func (o *Output) printWordCheck(w WordCheck) {
	verdict := "not in dictionary"
	if w.Valid {
		verdict = "valid"
	}
	fmt.Printf("%s (%s): %s\n", w.Word, w.Normalized, verdict)
}
