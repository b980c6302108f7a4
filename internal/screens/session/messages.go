package session

import (
	"github.com/rkal/geostreak/internal/conn"
)

// connEventMsg carries one connection event into the update loop. All
// session state changes flow through here, so the orchestrator only ever
// runs on the program goroutine.
type connEventMsg struct {
	Event conn.Event
}

// connClosedMsg signals that the manager's event stream has ended.
type connClosedMsg struct{}

// statusClearMsg reverts the transient answer acknowledgment. Epoch guards
// against a late timer wiping a newer status.
type statusClearMsg struct {
	Epoch int
}
