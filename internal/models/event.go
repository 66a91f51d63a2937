package models

import "time"

// MaxEventDuration is the longest window the store accepts (end <= start + MaxEventDuration).
const MaxEventDuration = 8 * time.Hour

// Event is a scheduled meeting. Start and End are absolute instants stored in UTC.
type Event struct {
	EventID    int64
	OwnerID    int64
	Name       string
	Agenda     string
	Start      time.Time
	End        time.Time
	LocationID *int64
	CreatedAt  time.Time

	// Populated on reads.
	Owner        *User
	Location     *Location
	Participants []*User
}

// HasParticipant reports whether userID is linked to the event as a participant.
func (e *Event) HasParticipant(userID int64) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
