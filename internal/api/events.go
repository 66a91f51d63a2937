package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/calendar"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/wallclock"
)

// EventHandler serves the viewer-scoped event endpoints.
type EventHandler struct {
	svc *calendar.Service
}

// NewEventHandler creates an event handler backed by svc.
func NewEventHandler(svc *calendar.Service) *EventHandler {
	return &EventHandler{svc: svc}
}

// List handles GET /events/ with the query, day and location_id filters.
func (h *EventHandler) List(c *gin.Context) {
	var q EventListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithBindError(c, err)
		return
	}

	filter := calendar.EventFilter{Query: q.Query, Day: q.Day}

	if raw := c.Query("location_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadRequest, FieldErrors{"location_id": {"Enter a number."}})
			return
		}
		filter.LocationID = &id
	}

	viewer := currentUser(c)
	events, err := h.svc.ListEvents(c.Request.Context(), viewer, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEventResponses(events, viewerZone(c, viewer)))
}

// Retrieve handles GET /events/:id/.
func (h *EventHandler) Retrieve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	viewer := currentUser(c)
	event, err := h.svc.GetEvent(c.Request.Context(), viewer, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEventResponse(event, viewerZone(c, viewer)))
}

// Create handles POST /events/.
func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	viewer := currentUser(c)
	event, err := h.svc.CreateEvent(c.Request.Context(), viewer, req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEventResponse(event, viewerZone(c, viewer)))
}

// viewerZone resolves the zone dates are rendered in, falling back to UTC when the
// viewer's zone can't be loaded.
func viewerZone(c *gin.Context, viewer *models.User) *time.Location {
	if viewer == nil {
		return time.UTC
	}

	loc, err := wallclock.LoadZone(viewer.Timezone)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("timezone", viewer.Timezone).Msg("Rendering dates in UTC")
		return time.UTC
	}
	return loc
}
