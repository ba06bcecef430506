package domain

// Reply is the result of one turn.
type Reply struct {
	// Response is the text to show to the user.
	Response string `json:"response"`

	// SessionID is the identifier the caller must send with the next turn.
	// It differs from the supplied one when a new session had to be created.
	SessionID string `json:"session_id"`

	// State is the session state after the turn.
	State State `json:"state"`

	// Matched is false when the fallback response was used.
	Matched bool `json:"matched"`
}
