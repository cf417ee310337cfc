// Package notify publishes user-facing notifications and navigation through the relay.
package notify

import (
	"sync"

	"github.com/joy-dx/netpipe/relays"
	relayDTO "github.com/joy-dx/relay/dto"
)

// RelayNotifier implements dto.Notifier on top of a relay.
type RelayNotifier struct {
	relay relayDTO.RelayInterface
}

func NewRelayNotifier(relay relayDTO.RelayInterface) *RelayNotifier {
	return &RelayNotifier{relay: relay}
}

func (n *RelayNotifier) Error(message, description string) {
	n.relay.Error(relays.RlyNetNotify{Severity: relays.SeverityError, Msg: message, Description: description})
}

func (n *RelayNotifier) Warning(message, description string) {
	n.relay.Warn(relays.RlyNetNotify{Severity: relays.SeverityWarning, Msg: message, Description: description})
}

func (n *RelayNotifier) Info(message, description string) {
	n.relay.Info(relays.RlyNetNotify{Severity: relays.SeverityInfo, Msg: message, Description: description})
}

func (n *RelayNotifier) Success(message, description string) {
	n.relay.Info(relays.RlyNetNotify{Severity: relays.SeveritySuccess, Msg: message, Description: description})
}

// RelayNavigator implements dto.Navigator. It tracks the current route and
// announces redirects on the relay; whoever owns the UI reacts to the event.
type RelayNavigator struct {
	mu        sync.Mutex
	relay     relayDTO.RelayInterface
	current   string
	loginPath string
}

func NewRelayNavigator(relay relayDTO.RelayInterface, loginPath string) *RelayNavigator {
	return &RelayNavigator{relay: relay, current: "/", loginPath: loginPath}
}

func (n *RelayNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// SetPath records a route change made by the UI.
func (n *RelayNavigator) SetPath(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
}

func (n *RelayNavigator) LoginPath() string { return n.loginPath }

func (n *RelayNavigator) RedirectToLogin() {
	n.mu.Lock()
	from := n.current
	n.current = n.loginPath
	n.mu.Unlock()

	n.relay.Warn(relays.RlyNetNavigate{
		From: from,
		To:   n.loginPath,
		Msg:  "session expired, login required",
	})
}
