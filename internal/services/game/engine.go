package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/wordbomb/internal/dependencies/clock"
	"github.com/mcoot/wordbomb/internal/dependencies/random"
	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/storage"
)

// Validator is the part of the dictionary the engine depends on
type Validator interface {
	Normalize(raw string) string
	IsValid(raw string) bool
	IsLoaded() bool
}

// Timers schedules the two delayed transitions of a room. Implementations
// must make sure at most one turn timeout and one cooldown are pending per
// room; arming replaces whatever was pending before.
type Timers interface {
	ArmTurnTimeout(turnSeq uint64, d time.Duration)
	CancelTurnTimeout()
	ArmCooldown(gameSeq uint64, d time.Duration)
}

// Engine runs the turn state machine for rooms. It holds no per-room state
// of its own: every method operates on the room it is given, and the caller
// must hold that room's lock for the duration of the call. Methods return the
// notifications the transition produced instead of sending them.
type Engine struct {
	validator Validator
	storage   storage.Storage
	clock     clock.Clock
	random    random.Random
	cfg       Config
	logger    *slog.Logger
}

// NewEngine creates a new turn Engine
func NewEngine(
	validator Validator,
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	if len(cfg.Constraints) == 0 {
		cfg.Constraints = DefaultConstraints
	}
	return &Engine{
		validator: validator,
		storage:   storage,
		clock:     clock,
		random:    random,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "game")),
	}
}

// Config returns the rules the engine was built with
func (e *Engine) Config() Config {
	return e.cfg
}

// StartGame moves a lobby into play: every player gets a fresh set of lives,
// used words are cleared and the first player's turn begins
func (e *Engine) StartGame(ctx context.Context, room *model.Room, timers Timers) ([]model.Notification, error) {
	if room.State != model.RoomStateLobby {
		return nil, model.ErrGameInProgress
	}
	if e.cfg.RequireDictionary && !e.validator.IsLoaded() {
		return nil, model.ErrDictionaryNotLoaded
	}

	now := e.clock.Now()
	room.ResetTurnState()
	room.State = model.RoomStatePlaying
	room.GameSeq++
	room.GameStarted = now
	room.UpdatedAt = now

	room.TurnOrder = make([]model.ConnID, len(room.Players))
	for i, p := range room.Players {
		room.TurnOrder[i] = p.ID
		p.Lives = room.Settings.StartingLives
		p.IsAlive = p.Lives > 0
	}

	e.logger.Info("game started",
		slog.String("room", string(room.Code)),
		slog.Uint64("game_seq", room.GameSeq),
		slog.Int("player_count", len(room.TurnOrder)),
	)

	return e.startTurn(room, timers), nil
}

// startTurn draws a new constraint for the active player and arms the
// elimination timeout
func (e *Engine) startTurn(room *model.Room, timers Timers) []model.Notification {
	timers.CancelTurnTimeout()

	room.Constraint = e.random.Choice(e.cfg.Constraints)
	room.TurnSeq++
	room.Turns++
	room.UpdatedAt = e.clock.Now()

	activeID := room.ActivePlayerID()
	lives := 0
	if p := room.GetPlayer(activeID); p != nil {
		lives = p.Lives
	}

	timers.ArmTurnTimeout(room.TurnSeq, e.cfg.TurnTimeout(room.Settings.RoundTimeSeconds))

	return []model.Notification{
		model.Broadcast(room.Code, model.EventNextTurn, model.NextTurnPayload{
			ActivePlayerID: activeID,
			Constraint:     room.Constraint,
			TimeLeft:       room.Settings.RoundTimeSeconds,
			PlayerLives:    lives,
			Lives:          room.PlayerLives(),
		}),
	}
}

// HandleTimeout applies a turn timeout. A timeout carrying a turn sequence
// other than the current one belongs to a turn that already ended and is
// ignored.
func (e *Engine) HandleTimeout(ctx context.Context, room *model.Room, turnSeq uint64, timers Timers) []model.Notification {
	if room.State != model.RoomStatePlaying || turnSeq != room.TurnSeq {
		e.logger.Debug("ignoring stale turn timeout",
			slog.String("room", string(room.Code)),
			slog.Uint64("turn_seq", turnSeq),
			slog.Uint64("current_seq", room.TurnSeq),
		)
		return nil
	}

	player := room.GetPlayer(room.ActivePlayerID())
	if player == nil {
		// Active player already left; just move on
		return e.advance(ctx, room, timers)
	}

	player.LoseLife()
	room.UpdatedAt = e.clock.Now()

	e.logger.Info("turn timed out",
		slog.String("room", string(room.Code)),
		slog.String("player_id", string(player.ID)),
		slog.Int("lives", player.Lives),
	)

	notes := []model.Notification{
		model.Broadcast(room.Code, model.EventLifeLost, model.LifeLostPayload{
			PlayerID: player.ID,
			Lives:    player.Lives,
		}),
	}

	alive := room.AlivePlayers()
	if len(alive) <= 1 {
		winner := player
		if len(alive) == 1 {
			winner = alive[0]
		}
		return append(notes, e.endGame(ctx, room, winner, timers)...)
	}

	return append(notes, e.advance(ctx, room, timers)...)
}

// advance passes the turn to the next alive player in turn order, looking at
// most one full cycle ahead
func (e *Engine) advance(ctx context.Context, room *model.Room, timers Timers) []model.Notification {
	n := len(room.TurnOrder)
	for step := 1; step <= n; step++ {
		idx := (room.ActiveIndex + step) % n
		if p := room.GetPlayer(room.TurnOrder[idx]); p != nil && p.IsAlive {
			room.ActiveIndex = idx
			return e.startTurn(room, timers)
		}
	}

	e.logger.Warn("no alive player to pass the turn to",
		slog.String("room", string(room.Code)),
	)
	return e.endGame(ctx, room, nil, timers)
}

// Submit validates a word from a connection. Checks run in a fixed order and
// the first failure is returned; a rejection changes nothing. On acceptance
// the word is recorded and the turn passes on.
func (e *Engine) Submit(ctx context.Context, room *model.Room, connID model.ConnID, raw string, timers Timers) ([]model.Notification, error) {
	if room.State != model.RoomStatePlaying {
		return nil, model.ErrGameNotActive
	}
	if connID != room.ActivePlayerID() {
		return nil, model.ErrNotYourTurn
	}

	word := e.validator.Normalize(raw)
	if room.IsUsed(word) {
		return nil, model.ErrAlreadyUsed
	}
	if word == "" || !strings.Contains(word, room.Constraint) {
		return nil, fmt.Errorf("%w: must contain %s", model.ErrConstraintMismatch, room.Constraint)
	}
	if !e.validator.IsValid(word) {
		return nil, model.ErrNotAWord
	}

	room.MarkUsed(word)
	timers.CancelTurnTimeout()

	e.logger.Debug("word accepted",
		slog.String("room", string(room.Code)),
		slog.String("player_id", string(connID)),
		slog.String("word", word),
	)

	notes := []model.Notification{
		model.Direct(room.Code, connID, model.EventWordAccepted, model.WordAcceptedPayload{Word: word}),
		model.Broadcast(room.Code, model.EventAnimation, model.AnimationPayload{
			Type:     model.AnimationSuccess,
			PlayerID: connID,
		}),
	}
	return append(notes, e.advance(ctx, room, timers)...), nil
}

// RelayTyping mirrors the active player's partial input to the room. Input
// from anyone else is dropped.
func (e *Engine) RelayTyping(room *model.Room, connID model.ConnID, text string) []model.Notification {
	if room.State != model.RoomStatePlaying || connID != room.ActivePlayerID() {
		return nil
	}
	if r := []rune(text); e.cfg.MaxTypingLength > 0 && len(r) > e.cfg.MaxTypingLength {
		text = string(r[:e.cfg.MaxTypingLength])
	}
	return []model.Notification{
		model.Broadcast(room.Code, model.EventPlayerTyping, model.PlayerTypingPayload{
			PlayerID: connID,
			Word:     text,
		}),
	}
}

// PlayerLeft updates a game in progress after a player has been removed from
// the room. The player counts as eliminated: the game ends if at most one
// player is still alive, and the turn moves on if it was theirs.
func (e *Engine) PlayerLeft(ctx context.Context, room *model.Room, playerID model.ConnID, wasActive bool, timers Timers) []model.Notification {
	if room.State != model.RoomStatePlaying {
		return nil
	}

	alive := room.AlivePlayers()
	if len(alive) <= 1 {
		var winner *model.Player
		if len(alive) == 1 {
			winner = alive[0]
		}
		return e.endGame(ctx, room, winner, timers)
	}

	if wasActive {
		return e.advance(ctx, room, timers)
	}
	return nil
}

// endGame finishes the current game, records it and schedules the return to
// the lobby. A nil winner means nobody is left to win.
func (e *Engine) endGame(ctx context.Context, room *model.Room, winner *model.Player, timers Timers) []model.Notification {
	timers.CancelTurnTimeout()

	now := e.clock.Now()
	room.State = model.RoomStateEnded
	room.UpdatedAt = now

	payload := model.GameOverPayload{Winner: model.NoWinner}
	if winner != nil {
		payload.Winner = winner.Username
		payload.WinnerID = winner.ID
	}

	summary := e.summarize(room, payload, now)
	if err := e.storage.SaveGameSummary(ctx, summary); err != nil {
		e.logger.Error("failed to save game summary",
			slog.String("room", string(room.Code)),
			slog.String("error", err.Error()),
		)
	}

	e.logger.Info("game over",
		slog.String("room", string(room.Code)),
		slog.Uint64("game_seq", room.GameSeq),
		slog.String("winner", payload.Winner),
		slog.Int("turns", room.Turns),
	)

	timers.ArmCooldown(room.GameSeq, e.cfg.Cooldown)

	return []model.Notification{
		model.Broadcast(room.Code, model.EventGameOver, payload),
	}
}

func (e *Engine) summarize(room *model.Room, result model.GameOverPayload, now time.Time) *model.GameSummary {
	players := make([]model.PlayerSnapshot, len(room.Players))
	for i, p := range room.Players {
		players[i] = p.Snapshot()
	}
	words := make([]string, len(room.WordLog))
	copy(words, room.WordLog)

	return &model.GameSummary{
		RoomCode:    room.Code,
		GameSeq:     room.GameSeq,
		Winner:      result.Winner,
		WinnerID:    result.WinnerID,
		Players:     players,
		WordsPlayed: words,
		Turns:       room.Turns,
		StartedAt:   room.GameStarted,
		EndedAt:     now,
	}
}

// HandleCooldown returns a finished room to the lobby so it can be played
// again. A cooldown from an earlier game is ignored.
func (e *Engine) HandleCooldown(room *model.Room, gameSeq uint64) []model.Notification {
	if room.State != model.RoomStateEnded || gameSeq != room.GameSeq {
		return nil
	}

	room.State = model.RoomStateLobby
	room.ResetTurnState()
	for _, p := range room.Players {
		p.Lives = room.Settings.StartingLives
		p.IsAlive = p.Lives > 0
	}
	room.UpdatedAt = e.clock.Now()

	e.logger.Debug("room back in lobby", slog.String("room", string(room.Code)))

	return []model.Notification{
		model.Broadcast(room.Code, model.EventRoomUpdate, room.UpdatePayload()),
	}
}
