package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

const msgLocationNotAvailable = "Location not available"

// LocationCheckMode selects how a referenced location is matched against the actor's company.
type LocationCheckMode string

const (
	// LocationCheckStrict requires the referenced location itself to be managed within
	// the actor's company.
	LocationCheckStrict LocationCheckMode = "strict"

	// LocationCheckCompany only requires that the actor's company manages some location.
	// The referenced id is left to the store's foreign key.
	LocationCheckCompany LocationCheckMode = "company"
)

// ParseLocationCheckMode validates a mode name.
func ParseLocationCheckMode(s string) (LocationCheckMode, error) {
	switch mode := LocationCheckMode(s); mode {
	case LocationCheckStrict, LocationCheckCompany:
		return mode, nil
	case "":
		return LocationCheckStrict, nil
	default:
		return "", fmt.Errorf("unknown location check mode %q", s)
	}
}

// LocationChecker decides whether an actor may hold an event at a location.
type LocationChecker struct {
	locations store.LocationStore
	mode      LocationCheckMode
}

// NewLocationChecker creates a checker using mode.
func NewLocationChecker(locations store.LocationStore, mode LocationCheckMode) *LocationChecker {
	if mode == "" {
		mode = LocationCheckStrict
	}
	return &LocationChecker{locations: locations, mode: mode}
}

// Check returns a ValidationError on location_id when the location isn't available to actor.
// A nil locationID always passes.
func (c *LocationChecker) Check(ctx context.Context, actor *models.User, locationID *int64) error {
	if locationID == nil {
		return nil
	}

	notAvailable := &ValidationError{Field: "location_id", Message: msgLocationNotAvailable}

	if actor.CompanyID == nil {
		return notAvailable
	}

	switch c.mode {
	case LocationCheckCompany:
		ok, err := c.locations.ExistsInCompany(ctx, *actor.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to check company locations: %w", err)
		}
		if !ok {
			return notAvailable
		}
		return nil

	default:
		_, err := c.locations.GetForCompany(ctx, *actor.CompanyID, *locationID)
		if errors.Is(err, store.ErrLocationNotFound) {
			return notAvailable
		}
		if err != nil {
			return fmt.Errorf("failed to check location: %w", err)
		}
		return nil
	}
}
