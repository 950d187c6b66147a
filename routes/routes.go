package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventsapi/config"
	"eventsapi/images"
	"eventsapi/middlewares"
	"eventsapi/models"
	"eventsapi/utils"
)

// deps is the dependency container handlers hang off.
type deps struct {
	cfg      *config.Config
	users    models.UserRepository
	sessions models.SessionRepository
	events   models.EventRepository
	members  models.MembershipRepository
	images   images.Store
	inv      *utils.CacheInvalidator
	log      zerolog.Logger
}

// RegisterRoutes mounts the three route groups. create-user, login and the
// public event listing are the only routes reachable without the
// cc-authentication header pair.
func RegisterRoutes(
	server *gin.Engine,
	cfg *config.Config,
	u models.UserRepository,
	s models.SessionRepository,
	e models.EventRepository,
	m models.MembershipRepository,
	img images.Store,
	rdb *redis.Client,
	inv *utils.CacheInvalidator,
	logger zerolog.Logger,
) {
	d := &deps{cfg: cfg, users: u, sessions: s, events: e, members: m, images: img, inv: inv, log: logger}

	// global per-IP limit
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// tighter limit on account creation and login
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   2,
		IdleTTL: 10 * time.Minute,
	})

	usersGroup := server.Group("/users")
	usersGroup.POST("/create-user",
		authLimiter.Middleware(func(c *gin.Context) string { return "create:" + c.ClientIP() }),
		d.createUser,
	)
	usersGroup.POST("/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		d.login,
	)

	// per-user limit and daily quota apply only behind authentication, where
	// the username in the context is trusted
	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	authed := func(g *gin.RouterGroup) {
		g.Use(middlewares.Authenticate(s))
		g.Use(userLimiter.Middleware(func(c *gin.Context) string {
			return "u:" + c.GetString("username")
		}))
		g.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
			Limit:  2000,
			Window: 24 * time.Hour,
			KeyFn: func(c *gin.Context) string {
				username := c.GetString("username")
				if username == "" {
					return ""
				}
				return "quota:user:" + username + ":day"
			},
		}))
	}

	usersAuthed := usersGroup.Group("/")
	authed(usersAuthed)
	usersAuthed.GET("/get-user-by-username/:username", d.getUserByUsername)
	usersAuthed.PUT("/update-user-password", d.updateUserPassword)
	usersAuthed.DELETE("/delete-user-by-username/:username", d.deleteUserByUsername)
	usersAuthed.POST("/logout", d.logout)
	usersAuthed.PUT("/add-to-created-events", d.addToCreatedEvents)
	usersAuthed.PUT("/add-to-attending-events", d.addToAttendingEvents)
	usersAuthed.GET("/get-image/:username", d.getImage)
	usersAuthed.POST("/set-image", d.setImage)

	eventsGroup := server.Group("/events")
	authed(eventsGroup)
	eventsGroup.POST("/create-event", d.createEvent)
	eventsGroup.GET("/get-event-by-id/:id", d.getEventByID)
	eventsGroup.GET("/get-events-by-creator/:username", d.getEventsByCreator)
	eventsGroup.DELETE("/delete-event-by-id/:id", d.deleteEventByID)
	eventsGroup.PUT("/update-event", d.updateEvent)
	eventsGroup.PUT("/add-attendees", d.addAttendees)
	eventsGroup.PUT("/remove-attendees", d.removeAttendees)
	eventsGroup.PUT("/toggle-past-event", d.togglePastEvent)
	eventsGroup.GET("/get-events-by-username/:username", d.getEventsByUsername)
	eventsGroup.POST("/add-event-to-user", d.addEventToUser)
	eventsGroup.DELETE("/remove-event-from-user", d.removeEventFromUser)

	server.GET("/public-events/get-all-events", d.getAllEvents)
}
