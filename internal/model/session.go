package model

// State is where the session state machine currently sits.
type State int

const (
	// Unknown is the initial state: the cookie has not been checked yet, or it
	// was checked and no identity has been fetched.
	Unknown State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the authentication state of this client.
// User is non-nil only in the Authenticated state.
type Session struct {
	State            State
	User             *Identity
	HasSessionCookie bool
}

// LoggedIn reports whether a user is currently known.
func (s Session) LoggedIn() bool {
	return s.State == Authenticated && s.User != nil
}
