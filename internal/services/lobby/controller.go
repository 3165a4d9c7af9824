package lobby

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/wordbomb/internal/dependencies/clock"
	"github.com/mcoot/wordbomb/internal/dependencies/random"
	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/game"
	"github.com/mcoot/wordbomb/internal/storage"
)

// maxCodeAttempts bounds room code generation. With 26^4 codes this is only
// reached if nearly every code is taken.
const maxCodeAttempts = 1000

// KickedMessage is sent to a player removed by the host
const KickedMessage = "You have been kicked by the host"

// Controller is the registry of active rooms. It routes commands to the right
// room, serializes everything that touches a room behind that room's own
// lock, and hands the resulting notifications to the Notifier.
//
// Lock order is always room entry first, then the registry table.
type Controller struct {
	engine   *game.Engine
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	notifier Notifier
	logger   *slog.Logger

	mu      sync.RWMutex
	rooms   map[model.RoomCode]*roomEntry
	members map[model.ConnID]model.RoomCode
}

// NewController creates a new room registry
func NewController(
	engine *game.Engine,
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	notifier Notifier,
	logger *slog.Logger,
) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		engine:   engine,
		storage:  storage,
		clock:    clock,
		random:   random,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "lobby")),
		rooms:    make(map[model.RoomCode]*roomEntry),
		members:  make(map[model.ConnID]model.RoomCode),
	}
}

// Removal describes the outcome of a player leaving a room
type Removal struct {
	Code   model.RoomCode
	Room   *model.RoomSnapshot // nil when the room was closed
	Closed bool
}

// NormalizeCode canonicalizes a user-entered room code
func NormalizeCode(code string) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}

// normalizeUsername trims and caps a display name
func normalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return "", model.ErrInvalidUsername
	}
	if r := []rune(name); len(r) > model.MaxUsernameLength {
		name = strings.TrimSpace(string(r[:model.MaxUsernameLength]))
	}
	return name, nil
}

// CreateRoom opens a new room with the connection as its host
func (c *Controller) CreateRoom(ctx context.Context, connID model.ConnID, username string) (*model.RoomSnapshot, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	entry := &roomEntry{owner: c}
	// Nobody else can reach the entry until it is in the table
	entry.mu.Lock()
	defer entry.mu.Unlock()

	c.mu.Lock()
	if _, ok := c.members[connID]; ok {
		c.mu.Unlock()
		return nil, model.ErrAlreadyInRoom
	}
	code, err := c.allocateCodeLocked()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	room := model.NewRoom(code, now)
	room.AddPlayer(model.NewPlayer(connID, name, room.Settings.StartingLives, now))
	room.SetHost(connID)
	entry.room = room
	c.rooms[code] = entry
	c.members[connID] = code
	c.mu.Unlock()

	c.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("host_id", string(connID)),
	)

	c.notifier.AddMember(code, connID)
	c.dispatch([]model.Notification{
		model.Direct(code, connID, model.EventRoomCreated, model.RoomCodePayload{Code: code}),
		model.Broadcast(code, model.EventRoomUpdate, room.UpdatePayload()),
	})

	snap := room.Snapshot()
	return &snap, nil
}

// allocateCodeLocked draws codes until one is free. Caller holds c.mu.
func (c *Controller) allocateCodeLocked() (model.RoomCode, error) {
	for range maxCodeAttempts {
		code := model.RoomCode(c.random.String(model.RoomCodeLength, model.RoomCodeAlphabet))
		if len(code) != model.RoomCodeLength {
			continue
		}
		if _, taken := c.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", model.ErrCodeSpaceExhausted
}

// JoinRoom adds the connection to an existing room as a regular player
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, connID model.ConnID, username string) (*model.RoomSnapshot, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	entry, err := c.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()
	room := entry.room

	if room.State != model.RoomStateLobby {
		return nil, model.ErrGameInProgress
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	c.mu.Lock()
	if _, ok := c.members[connID]; ok {
		c.mu.Unlock()
		return nil, model.ErrAlreadyInRoom
	}
	c.members[connID] = room.Code
	c.mu.Unlock()

	now := c.clock.Now()
	room.AddPlayer(model.NewPlayer(connID, name, room.Settings.StartingLives, now))
	room.UpdatedAt = now

	c.logger.Info("player joined",
		slog.String("room", string(room.Code)),
		slog.String("player_id", string(connID)),
		slog.Int("player_count", len(room.Players)),
	)

	c.notifier.AddMember(room.Code, connID)
	c.dispatch([]model.Notification{
		model.Direct(room.Code, connID, model.EventJoinedRoom, model.RoomCodePayload{Code: room.Code}),
		model.Broadcast(room.Code, model.EventRoomUpdate, room.UpdatePayload()),
	})

	snap := room.Snapshot()
	return &snap, nil
}

// UpdateSettings merges a settings patch from the host. It does nothing if the
// room is gone or a game is running.
func (c *Controller) UpdateSettings(ctx context.Context, code model.RoomCode, requester model.ConnID, patch SettingsPatch) error {
	entry, err := c.lockRoom(code)
	if err != nil {
		return nil
	}
	defer entry.mu.Unlock()
	room := entry.room

	if room.State != model.RoomStateLobby {
		return nil
	}
	if room.HostID != requester {
		return model.ErrNotHost
	}

	room.Settings = patch.Apply(room.Settings)
	room.UpdatedAt = c.clock.Now()

	c.logger.Debug("settings updated",
		slog.String("room", string(room.Code)),
		slog.Int("round_time", room.Settings.RoundTimeSeconds),
		slog.Int("starting_lives", room.Settings.StartingLives),
		slog.Int("max_players", room.Settings.MaxPlayers),
	)

	c.dispatch([]model.Notification{
		model.Broadcast(room.Code, model.EventSettingsUpdated, model.SettingsPayload{Settings: room.Settings}),
	})
	return nil
}

// KickPlayer lets the host remove another player. The target is told before
// it leaves the room's broadcast group.
func (c *Controller) KickPlayer(ctx context.Context, code model.RoomCode, requester, target model.ConnID) error {
	entry, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()
	room := entry.room

	if room.HostID != requester {
		return model.ErrNotHost
	}
	if target == requester {
		return model.ErrSelfKick
	}
	if !room.HasPlayer(target) {
		return model.ErrPlayerNotFound
	}

	c.logger.Info("player kicked",
		slog.String("room", string(room.Code)),
		slog.String("player_id", string(target)),
	)

	c.dispatch([]model.Notification{
		model.Direct(room.Code, target, model.EventKicked, model.KickedPayload{Message: KickedMessage}),
	})
	c.detachLocked(ctx, entry, target)
	return nil
}

// RemovePlayer handles a connection going away. It returns false if the
// connection was not in any room.
func (c *Controller) RemovePlayer(ctx context.Context, connID model.ConnID) (*Removal, bool) {
	c.mu.RLock()
	code, ok := c.members[connID]
	entry := c.rooms[code]
	c.mu.RUnlock()
	if !ok || entry == nil {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.closed || !entry.room.HasPlayer(connID) {
		return nil, false
	}

	closed := c.detachLocked(ctx, entry, connID)
	removal := &Removal{Code: code, Closed: closed}
	if !closed {
		snap := entry.room.Snapshot()
		removal.Room = &snap
	}
	return removal, true
}

// detachLocked takes a player out of a room, closing the room if it is now
// empty, promoting a new host if needed and letting a running game react.
// Caller holds entry.mu. Returns true if the room was closed.
func (c *Controller) detachLocked(ctx context.Context, entry *roomEntry, connID model.ConnID) bool {
	room := entry.room
	wasHost := room.HostID == connID
	wasActive := room.ActivePlayerID() == connID

	room.RemovePlayer(connID)
	room.UpdatedAt = c.clock.Now()
	c.notifier.RemoveMember(room.Code, connID)

	c.mu.Lock()
	delete(c.members, connID)
	if room.IsEmpty() {
		delete(c.rooms, room.Code)
	}
	c.mu.Unlock()

	if room.IsEmpty() {
		c.closeLocked(ctx, entry)
		return true
	}

	var notes []model.Notification
	if wasHost {
		room.SetHost(room.Players[0].ID)
		c.logger.Info("host promoted",
			slog.String("room", string(room.Code)),
			slog.String("host_id", string(room.HostID)),
		)
		notes = append(notes, model.Broadcast(room.Code, model.EventNewHost, model.NewHostPayload{HostID: room.HostID}))
	}
	notes = append(notes, model.Broadcast(room.Code, model.EventRoomUpdate, room.UpdatePayload()))
	notes = append(notes, c.engine.PlayerLeft(ctx, room, connID, wasActive, entry)...)
	c.dispatch(notes)
	return false
}

// closeLocked tears down a room that has already left the table
func (c *Controller) closeLocked(ctx context.Context, entry *roomEntry) {
	entry.closed = true
	entry.stopTimers()
	code := entry.room.Code

	if err := c.storage.DeleteGameHistory(ctx, code); err != nil {
		c.logger.Warn("failed to delete game history",
			slog.String("room", string(code)),
			slog.String("error", err.Error()),
		)
	}

	c.logger.Info("room closed", slog.String("room", string(code)))
	c.dispatch([]model.Notification{
		model.Broadcast(code, model.EventRoomClosed, model.RoomCodePayload{Code: code}),
	})
}

// StartGame starts a game in the room on behalf of the host. It does nothing
// if the room is gone.
func (c *Controller) StartGame(ctx context.Context, code model.RoomCode, requester model.ConnID) error {
	entry, err := c.lockRoom(code)
	if err != nil {
		return nil
	}
	defer entry.mu.Unlock()

	if entry.room.HostID != requester {
		return model.ErrNotHost
	}

	notes, err := c.engine.StartGame(ctx, entry.room, entry)
	if err != nil {
		return err
	}
	c.dispatch(notes)
	return nil
}

// HandleSubmission checks a word from a connection. A nil error means the
// word was accepted and the turn has moved on.
func (c *Controller) HandleSubmission(ctx context.Context, code model.RoomCode, connID model.ConnID, word string) error {
	entry, err := c.lockRoom(code)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	notes, err := c.engine.Submit(ctx, entry.room, connID, word, entry)
	if err != nil {
		return err
	}
	c.dispatch(notes)
	return nil
}

// RelayTyping shares the active player's partial input with the room.
// Anything from a connection whose turn it is not is dropped.
func (c *Controller) RelayTyping(ctx context.Context, code model.RoomCode, connID model.ConnID, text string) {
	entry, err := c.lockRoom(code)
	if err != nil {
		return
	}
	defer entry.mu.Unlock()

	c.dispatch(c.engine.RelayTyping(entry.room, connID, text))
}

// GetRoom returns a snapshot of a room
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomSnapshot, error) {
	entry, err := c.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	snap := entry.room.Snapshot()
	return &snap, nil
}

// ListRooms returns a summary of every active room ordered by code
func (c *Controller) ListRooms(ctx context.Context) []model.RoomSummary {
	c.mu.RLock()
	entries := make([]*roomEntry, 0, len(c.rooms))
	for _, e := range c.rooms {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	summaries := make([]model.RoomSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			summaries = append(summaries, e.room.Summary())
		}
		e.mu.Unlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Code < summaries[j].Code
	})
	return summaries
}

// RoomHistory returns the finished games of an active room, oldest first
func (c *Controller) RoomHistory(ctx context.Context, code model.RoomCode) ([]model.GameSummary, error) {
	if !c.roomExists(code) {
		return nil, model.ErrRoomNotFound
	}
	return c.storage.GetGameHistory(ctx, NormalizeCode(string(code)))
}

// RoomOf returns the room a connection belongs to
func (c *Controller) RoomOf(connID model.ConnID) (model.RoomCode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	code, ok := c.members[connID]
	return code, ok
}

// ActiveRoomCount returns the number of rooms in the table
func (c *Controller) ActiveRoomCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rooms)
}

// Close stops every pending timer. Rooms stay readable but no further
// timeouts or cooldowns fire.
func (c *Controller) Close() {
	c.mu.RLock()
	entries := make([]*roomEntry, 0, len(c.rooms))
	for _, e := range c.rooms {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		e.stopTimers()
		e.stopped = true
		e.mu.Unlock()
	}
}

// lockRoom finds a room and returns its entry locked. The caller must unlock.
func (c *Controller) lockRoom(code model.RoomCode) (*roomEntry, error) {
	code = NormalizeCode(string(code))

	c.mu.RLock()
	entry := c.rooms[code]
	c.mu.RUnlock()
	if entry == nil {
		return nil, model.ErrRoomNotFound
	}

	entry.mu.Lock()
	if entry.closed {
		entry.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	return entry, nil
}

func (c *Controller) roomExists(code model.RoomCode) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[NormalizeCode(string(code))]
	return ok
}

func (c *Controller) dispatch(notes []model.Notification) {
	for _, n := range notes {
		c.notifier.Notify(n)
	}
}

// ControllerInterface is the registry surface used by the transports and API
type ControllerInterface interface {
	CreateRoom(ctx context.Context, connID model.ConnID, username string) (*model.RoomSnapshot, error)
	JoinRoom(ctx context.Context, code model.RoomCode, connID model.ConnID, username string) (*model.RoomSnapshot, error)
	UpdateSettings(ctx context.Context, code model.RoomCode, requester model.ConnID, patch SettingsPatch) error
	KickPlayer(ctx context.Context, code model.RoomCode, requester, target model.ConnID) error
	RemovePlayer(ctx context.Context, connID model.ConnID) (*Removal, bool)
	StartGame(ctx context.Context, code model.RoomCode, requester model.ConnID) error
	HandleSubmission(ctx context.Context, code model.RoomCode, connID model.ConnID, word string) error
	RelayTyping(ctx context.Context, code model.RoomCode, connID model.ConnID, text string)
	GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomSnapshot, error)
	ListRooms(ctx context.Context) []model.RoomSummary
	RoomHistory(ctx context.Context, code model.RoomCode) ([]model.GameSummary, error)
	RoomOf(connID model.ConnID) (model.RoomCode, bool)
	ActiveRoomCount() int
}

var _ ControllerInterface = (*Controller)(nil)
