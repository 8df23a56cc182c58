// Package domain holds the quote status machine.
package domain

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusViewed    Status = "viewed"
	StatusApproved  Status = "approved"
	StatusDeclined  Status = "declined"
	StatusConverted Status = "converted"
	StatusExpired   Status = "expired"
)

// transitions maps each status to the statuses reachable from it.
// Expiry is driven by the background worker, never by a client call.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSent},
	StatusSent:      {StatusViewed, StatusApproved, StatusDeclined, StatusExpired},
	StatusViewed:    {StatusApproved, StatusDeclined, StatusExpired},
	StatusApproved:  {StatusConverted},
	StatusDeclined:  {},
	StatusConverted: {},
	StatusExpired:   {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a quote may move from s to target.
func (s Status) CanTransition(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// ClientActionable reports whether a client may approve or decline:
// only quotes that have been sent and not yet resolved.
func (s Status) ClientActionable() bool {
	return s == StatusSent || s == StatusViewed
}
