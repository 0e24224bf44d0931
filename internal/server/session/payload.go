package session

// UserIDKey is the payload key holding the authenticated user's id.
const UserIDKey = "userId"

// Payload is the data carried inside a session cookie. Values must survive a
// JSON round trip, so numbers come back as float64.
type Payload map[string]any

// NewPayload returns a payload carrying userID.
func NewPayload(userID string) Payload {
	return Payload{UserIDKey: userID}
}

// UserID returns the user id when it is present and a non-empty string.
func (p Payload) UserID() (string, bool) {
	v, ok := p[UserIDKey]
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func (p Payload) clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
