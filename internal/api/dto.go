package api

import (
	"time"

	"github.com/wolfeidau/teamcal/internal/calendar"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/wallclock"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateLocationRequest is the body of POST /locations/.
type CreateLocationRequest struct {
	ManagerID int64  `json:"manager_id" binding:"required,min=1"`
	Name      string `json:"name" binding:"required,max=64"`
	Address   string `json:"address" binding:"required"`
}

func (r *CreateLocationRequest) toInput() calendar.CreateLocationInput {
	return calendar.CreateLocationInput{
		ManagerID: r.ManagerID,
		Name:      r.Name,
		Address:   r.Address,
	}
}

// CreateEventRequest is the body of POST /events/. Dates are wall-clock values in the
// caller's timezone.
type CreateEventRequest struct {
	Name         string   `json:"name" binding:"required,max=64"`
	Agenda       string   `json:"agenda" binding:"required"`
	DateStart    string   `json:"date_start" binding:"required"`
	DateEnd      string   `json:"date_end" binding:"required"`
	Participants []string `json:"participants" binding:"required,dive,email"`
	LocationID   *int64   `json:"location_id" binding:"omitempty,min=1"`
}

func (r *CreateEventRequest) toInput() calendar.CreateEventInput {
	return calendar.CreateEventInput{
		Name:         r.Name,
		Agenda:       r.Agenda,
		DateStart:    r.DateStart,
		DateEnd:      r.DateEnd,
		Participants: r.Participants,
		LocationID:   r.LocationID,
	}
}

// EventListQuery holds the event list filters. location_id is parsed by the handler so
// a malformed value can be reported on its own field.
type EventListQuery struct {
	Query string `form:"query"`
	Day   string `form:"day"`
}

// UserResponse is the public view of a user nested in other responses.
type UserResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func toUserResponse(u *models.User) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	return UserResponse{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// LocationResponse is the list and retrieve shape.
type LocationResponse struct {
	ID      int64        `json:"id"`
	Manager UserResponse `json:"manager"`
	Name    string       `json:"name"`
	Address string       `json:"address"`
}

func toLocationResponse(l *models.Location) *LocationResponse {
	if l == nil {
		return nil
	}
	return &LocationResponse{
		ID:      l.LocationID,
		Manager: toUserResponse(l.Manager),
		Name:    l.Name,
		Address: l.Address,
	}
}

func toLocationResponses(locations []*models.Location) []*LocationResponse {
	out := make([]*LocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, toLocationResponse(l))
	}
	return out
}

// LocationCreatedResponse is the create shape, with the manager as an id.
type LocationCreatedResponse struct {
	ID        int64  `json:"id"`
	ManagerID int64  `json:"manager_id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
}

func toLocationCreatedResponse(l *models.Location) *LocationCreatedResponse {
	return &LocationCreatedResponse{
		ID:        l.LocationID,
		ManagerID: l.ManagerID,
		Name:      l.Name,
		Address:   l.Address,
	}
}

// EventResponse is the list, retrieve and create shape. Dates are rendered in the
// viewer's timezone.
type EventResponse struct {
	ID           int64             `json:"id"`
	Owner        UserResponse      `json:"owner"`
	Name         string            `json:"name"`
	Agenda       string            `json:"agenda"`
	DateStart    string            `json:"date_start"`
	DateEnd      string            `json:"date_end"`
	Participants []UserResponse    `json:"participants"`
	Location     *LocationResponse `json:"location"`
}

func toEventResponse(e *models.Event, loc *time.Location) *EventResponse {
	participants := make([]UserResponse, 0, len(e.Participants))
	for _, p := range e.Participants {
		participants = append(participants, toUserResponse(p))
	}

	return &EventResponse{
		ID:           e.EventID,
		Owner:        toUserResponse(e.Owner),
		Name:         e.Name,
		Agenda:       e.Agenda,
		DateStart:    wallclock.Render(e.Start, loc),
		DateEnd:      wallclock.Render(e.End, loc),
		Participants: participants,
		Location:     toLocationResponse(e.Location),
	}
}

func toEventResponses(events []*models.Event, loc *time.Location) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e, loc))
	}
	return out
}
