package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events <code>",
		Short: "Spectate a room's live events",
		Long: `Connect to the room's SSE endpoint and stream events in real-time.

The stream opens with a ROOM_SNAPSHOT of the room, followed by every event
broadcast to the room:
  - ROOM_UPDATE: Players or host changed
  - SETTINGS_UPDATED: Host changed the settings
  - NEXT_TURN: A new turn started
  - ANIMATION_EVENT: A word was accepted
  - LIFE_LOST: A player ran out of time
  - PLAYER_TYPING: The active player's partial input
  - GAME_OVER: The game finished
  - ROOM_CLOSED: The room closed, ending the stream

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(cmd, args[0])
		},
	}
}

func streamEvents(cmd *cobra.Command, code string) error {
	ctx := cmd.Context()
	url := strings.TrimSuffix(cfg.ServerURL, "/") + roomPath(code, "events")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	client.logf("streaming %s", url)

	out := NewOutput(cfg.Output)
	if cfg.Output != "json" {
		fmt.Printf("Spectating room %s\n", strings.ToUpper(code))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event
			if currentEvent != "" {
				out.PrintEvent(currentEvent, json.RawMessage(strings.Join(dataLines, "\n")))
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if cfg.Output != "json" {
		fmt.Println("Disconnected")
	}
	return nil
}
