package navigation

import (
	"github.com/jontk/ctb/internal/logging"
)

// Navigator holds the current wizard state and the pickers visited
// during the current session so Back can return to them.
type Navigator struct {
	state   State
	history []State
	logger  *logging.Logger
}

// NewNavigator creates a closed navigator
func NewNavigator(logger *logging.Logger) *Navigator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Navigator{logger: logger.Component("navigation")}
}

// State returns the current wizard state
func (n *Navigator) State() State {
	return n.state
}

// Dispatch applies ev. On error the state is unchanged and the failure is
// logged as a diagnostic.
func (n *Navigator) Dispatch(ev Event) (State, error) {
	if _, ok := ev.(Back); ok && len(n.history) > 0 {
		prev := n.history[len(n.history)-1]
		n.history = n.history[:len(n.history)-1]
		prev.ID = newID()
		n.state = prev
		n.logger.Debug().Str("state", n.state.String()).Msg("navigated back")
		return n.state, nil
	}

	next, err := Transition(n.state, ev)
	if err != nil {
		n.logger.Warn().Err(err).Str("event", EventName(ev)).Str("state", n.state.String()).Msg("unhandled navigation event")
		return n.state, err
	}

	switch {
	case !next.IsOpen:
		n.history = nil
	case n.state.IsOpen && n.state.ModalType == ModalChooseAttribute && next.ModalType != ModalChooseAttribute:
		n.history = append(n.history, n.state)
	case next.ID != n.state.ID:
		n.history = nil
	}

	n.state = next
	n.logger.Debug().Str("event", EventName(ev)).Str("state", next.String()).Msg("navigated")
	return next, nil
}

// CanGoBack reports whether Back would succeed
func (n *Navigator) CanGoBack() bool {
	return n.state.IsOpen && (len(n.history) > 0 || n.state.ShowBackLink)
}

// Reset closes the navigator and forgets its history
func (n *Navigator) Reset() {
	n.state = State{}
	n.history = nil
}
