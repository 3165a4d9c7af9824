package lobby

import "github.com/mcoot/wordbomb/internal/model"

// Notifier delivers room notifications to connections and tracks which
// connections belong to which room. The controller calls it while holding a
// room's lock, so implementations must not block and must not call back into
// the controller.
type Notifier interface {
	// Notify delivers a notification to its target connection, or to every
	// member of its room when it has no target
	Notify(n model.Notification)

	// AddMember adds a connection to a room's broadcast group
	AddMember(code model.RoomCode, conn model.ConnID)

	// RemoveMember removes a connection from a room's broadcast group
	RemoveMember(code model.RoomCode, conn model.ConnID)
}

// MultiNotifier fans every call out to several notifiers in order
type MultiNotifier []Notifier

// Notify forwards to every notifier
func (m MultiNotifier) Notify(n model.Notification) {
	for _, notifier := range m {
		notifier.Notify(n)
	}
}

// AddMember forwards to every notifier
func (m MultiNotifier) AddMember(code model.RoomCode, conn model.ConnID) {
	for _, notifier := range m {
		notifier.AddMember(code, conn)
	}
}

// RemoveMember forwards to every notifier
func (m MultiNotifier) RemoveMember(code model.RoomCode, conn model.ConnID) {
	for _, notifier := range m {
		notifier.RemoveMember(code, conn)
	}
}

// NopNotifier drops everything
type NopNotifier struct{}

func (NopNotifier) Notify(model.Notification) {}
func (NopNotifier) AddMember(model.RoomCode, model.ConnID) {}
func (NopNotifier) RemoveMember(model.RoomCode, model.ConnID) {}

var (
	_ Notifier = MultiNotifier(nil)
	_ Notifier = NopNotifier{}
)
