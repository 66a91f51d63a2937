package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wolfeidau/teamcal/internal/calendar"
)

// LocationHandler serves the company-scoped location endpoints.
type LocationHandler struct {
	svc *calendar.Service
}

// NewLocationHandler creates a location handler backed by svc.
func NewLocationHandler(svc *calendar.Service) *LocationHandler {
	return &LocationHandler{svc: svc}
}

// List handles GET /locations/.
func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.svc.ListLocations(c.Request.Context(), currentUser(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocationResponses(locations))
}

// Retrieve handles GET /locations/:id/.
func (h *LocationHandler) Retrieve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	location, err := h.svc.GetLocation(c.Request.Context(), currentUser(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLocationResponse(location))
}

// Create handles POST /locations/.
func (h *LocationHandler) Create(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	location, err := h.svc.CreateLocation(c.Request.Context(), currentUser(c), req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLocationCreatedResponse(location))
}

// pathID parses the :id parameter. Anything that isn't a positive integer can't name a
// resource, so it is a 404.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		abortWithError(c, calendar.ErrNotFound)
		return 0, false
	}
	return id, true
}
