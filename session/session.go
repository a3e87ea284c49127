package session

import "club18/models"

// Screen is one of the named client screens. There is no terminal
// screen; a session runs for the life of its connection.
type Screen string

const (
	ScreenAgeGate    Screen = "age-gate"
	ScreenHome       Screen = "home"
	ScreenExplore    Screen = "explore"
	ScreenCreate     Screen = "create"
	ScreenInbox      Screen = "inbox"
	ScreenChatDetail Screen = "chat-detail"
	ScreenProfile    Screen = "profile"
)

type EventType string

const (
	EventSignedOut       EventType = "signed_out"
	EventProfileResolved EventType = "profile_resolved"
	EventNavigate        EventType = "navigate"
	EventOpenChat        EventType = "open_chat"
	EventBack            EventType = "back"
	EventBypass          EventType = "bypass"
)

type Event struct {
	Type EventType

	// profile_resolved
	UserID string
	Status string

	// navigate
	Screen Screen

	// open_chat
	PartnerID string
}

// State is the whole of a session: which screen is visible, who is
// authenticated, and which chat thread (if any) is open.
type State struct {
	Screen       Screen
	UserID       string
	Status       string
	ActiveThread string

	// Bypass is the demo escape hatch: it skips the identity check for
	// the duration of the session.
	Bypass bool
}

// Initial returns the state every session starts in.
func Initial() State {
	return State{Screen: ScreenAgeGate}
}

// Reduce applies one event to a state and returns the next state. It is
// pure; all gating lives here so no screen re-derives its own guard.
func Reduce(s State, e Event) State {
	switch e.Type {
	case EventSignedOut:
		// Back to the gate from anywhere, identity dropped.
		return State{Screen: ScreenAgeGate, Bypass: s.Bypass}

	case EventProfileResolved:
		s.UserID = e.UserID
		s.Status = e.Status
		if e.Status == models.StatusPendingOnboarding {
			// Authenticated but not yet a member: held at the gate so
			// onboarding can run.
			s.Screen = ScreenAgeGate
			s.ActiveThread = ""
			return s
		}
		s.Screen = ScreenHome
		s.ActiveThread = ""
		return s

	case EventNavigate:
		if !s.allowed() {
			return s
		}
		switch e.Screen {
		case ScreenHome, ScreenExplore, ScreenCreate, ScreenInbox, ScreenProfile:
			s.Screen = e.Screen
			s.ActiveThread = ""
		case ScreenChatDetail:
			// Only reachable through open_chat, which carries a partner.
		}
		return s

	case EventOpenChat:
		if s.UserID == "" || !s.allowed() || e.PartnerID == "" {
			return s
		}
		s.Screen = ScreenChatDetail
		s.ActiveThread = models.ConversationID(s.UserID, e.PartnerID)
		return s

	case EventBack:
		s.ActiveThread = ""
		s.Screen = parentOf(s.Screen)
		return s

	case EventBypass:
		s.Bypass = true
		s.Screen = ScreenHome
		return s
	}

	return s
}

// allowed reports whether this session may enter content screens.
func (s State) allowed() bool {
	if s.Bypass {
		return true
	}
	return s.UserID != "" && s.Status != models.StatusPendingOnboarding
}

// parentOf maps a sub-screen to the screen its back action returns to.
func parentOf(sc Screen) Screen {
	switch sc {
	case ScreenChatDetail:
		return ScreenInbox
	case ScreenAgeGate:
		return ScreenAgeGate
	default:
		return ScreenHome
	}
}
