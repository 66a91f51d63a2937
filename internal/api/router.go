// Package api exposes the calendar over HTTP with gin.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/auth"
	"github.com/wolfeidau/teamcal/internal/calendar"
	apphttp "github.com/wolfeidau/teamcal/internal/http"
	"github.com/wolfeidau/teamcal/internal/logger"
	"github.com/wolfeidau/teamcal/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Options configures the router.
type Options struct {
	Logger      zerolog.Logger
	Tracing     bool
	ServiceName string
}

// NewRouter builds the gin engine serving the calendar API.
func NewRouter(svc *calendar.Service, authn *auth.Authenticator, opts Options) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.Tracing {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	router.Use(apphttp.ClientIPMiddleware())
	router.Use(logger.GinRequests(opts.Logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sessions := NewSessionHandler(authn)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", sessions.Login)
		authGroup.POST("/logout", sessions.Logout)
	}

	authed := router.Group("/", RequireUser(authn))
	{
		locations := NewLocationHandler(svc)
		authed.GET("/locations/", locations.List)
		authed.POST("/locations/", locations.Create)
		authed.GET("/locations/:id/", locations.Retrieve)

		events := NewEventHandler(svc)
		authed.GET("/events/", events.List)
		authed.POST("/events/", events.Create)
		authed.GET("/events/:id/", events.Retrieve)
	}

	return router
}

// RequireUser rejects requests without valid credentials and stores the caller in the
// request context.
func RequireUser(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authn.Authenticate(c.Request)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		l := zerolog.Ctx(ctx).With().Int64("user_id", user.UserID).Logger()
		ctx = auth.WithUser(l.WithContext(ctx), user)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// currentUser returns the caller set by RequireUser, or nil.
func currentUser(c *gin.Context) *models.User {
	user, _ := auth.UserFromContext(c.Request.Context())
	return user
}
