package calendar

import (
	"time"

	"github.com/wolfeidau/teamcal/internal/models"
)

const (
	msgEndBeforeStart = "End must occur after start"
	msgTooLong        = "Event must not be longer than 8 hours"
)

// ValidateWindow checks the temporal rules for a new event.
//
// The upper bound is exclusive here, so an event of exactly eight hours is rejected
// even though the store would accept it.
func ValidateWindow(start, end time.Time) error {
	if !end.After(start) {
		return &ValidationError{Message: msgEndBeforeStart}
	}
	if !end.Before(start.Add(models.MaxEventDuration)) {
		return &ValidationError{Message: msgTooLong}
	}
	return nil
}
