package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// CreateLocationInput describes a new location.
type CreateLocationInput struct {
	ManagerID int64
	Name      string
	Address   string
}

// CreateLocation stores a location managed by in.ManagerID. The manager must exist;
// the actor and the manager are not required to share a company.
func (s *Service) CreateLocation(ctx context.Context, actor *models.User, in CreateLocationInput) (*models.Location, error) {
	if err := requireViewer(actor); err != nil {
		return nil, err
	}

	location := &models.Location{
		ManagerID: in.ManagerID,
		Name:      in.Name,
		Address:   in.Address,
	}

	if err := s.stores.Locations.Create(ctx, location); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.reject(ctx, "manager")
			return nil, &ValidationError{
				Field:   "manager_id",
				Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.ManagerID),
			}
		}
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	s.metrics.LocationsCreatedTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Info().
		Int64("location_id", location.LocationID).
		Int64("manager_id", location.ManagerID).
		Int64("created_by", actor.UserID).
		Msg("Created location")

	return location, nil
}

// ListLocations returns the locations managed within the viewer's company.
func (s *Service) ListLocations(ctx context.Context, viewer *models.User) ([]*models.Location, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	if viewer.CompanyID == nil {
		return []*models.Location{}, nil
	}

	locations, err := s.stores.Locations.ListByCompany(ctx, *viewer.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return locations, nil
}

// GetLocation returns a location managed within the viewer's company.
func (s *Service) GetLocation(ctx context.Context, viewer *models.User, locationID int64) (*models.Location, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	if viewer.CompanyID == nil {
		return nil, ErrNotFound
	}

	location, err := s.stores.Locations.GetForCompany(ctx, *viewer.CompanyID, locationID)
	if err != nil {
		if errors.Is(err, store.ErrLocationNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return location, nil
}

// DeleteLocation removes a location together with every event held there.
// It is an administrative operation and isn't scoped to a viewer.
func (s *Service) DeleteLocation(ctx context.Context, locationID int64) error {
	if err := s.stores.Locations.Delete(ctx, locationID); err != nil {
		if errors.Is(err, store.ErrLocationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete location: %w", err)
	}

	s.metrics.LocationsDeletedTotal.Add(ctx, 1)
	return nil
}
