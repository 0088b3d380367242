package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"speakersite/internal/apperr"
	"speakersite/internal/auth"
	"speakersite/internal/booking"
	"speakersite/internal/chat"
	"speakersite/internal/storage"
)

// Options tunes route gating.
type Options struct {
	RequireChatAuth bool
}

// Handler wires HTTP routes to the chat, booking, auth and content services.
type Handler struct {
	store    *storage.Store
	auth     *auth.Service
	chat     *chat.Service
	bookings *booking.Service
	opts     Options
	log      *logrus.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(store *storage.Store, authService *auth.Service, chatService *chat.Service, bookingService *booking.Service, opts Options, log *logrus.Logger) *Handler {
	return &Handler{
		store:    store,
		auth:     authService,
		chat:     chatService,
		bookings: bookingService,
		opts:     opts,
		log:      log,
	}
}

// NewRouter builds the gin engine with recovery, request logging and all routes.
func (h *Handler) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log))
	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.health)
	router.NoRoute(func(c *gin.Context) {
		h.respondError(c, apperr.NotFound("api", "route not found"))
	})

	api := router.Group("/api")
	api.Use(h.auth.Middleware())

	authRoutes := api.Group("/auth")
	authRoutes.Use(h.auth.CSRFMiddleware())
	authRoutes.GET("/me", h.me)
	authRoutes.POST("/logout", h.logout)
	authRoutes.POST("/register", h.register)
	authRoutes.POST("/login", h.login)

	chatRoutes := api.Group("/chat")
	chatRoutes.Use(h.auth.CSRFMiddleware())
	if h.opts.RequireChatAuth {
		chatRoutes.Use(auth.RequireUser())
	}
	chatRoutes.POST("/conversations", h.createConversation)
	chatRoutes.GET("/conversations", auth.RequireUser(), h.getConversations)
	chatRoutes.GET("/conversations/:id/messages", h.getMessages)
	chatRoutes.POST("/messages", h.sendMessage)

	api.GET("/talks", h.listTalks)
	api.GET("/talks/:id", h.getTalk)
	api.GET("/events", h.listEvents)
	api.GET("/testimonials", h.listTestimonials)

	bookingRoutes := api.Group("/bookings")
	bookingRoutes.Use(h.auth.CSRFMiddleware())
	bookingRoutes.POST("", h.submitBooking)
	bookingRoutes.GET("", auth.RequireAdmin(), h.listBookings)
	bookingRoutes.PATCH("/:id/status", auth.RequireAdmin(), h.updateBookingStatus)
}

func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Error("health check: database")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "database"})
		return
	}
	if err := h.auth.PingCache(ctx); err != nil {
		h.log.WithError(err).Error("health check: cache")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError writes the {"code","message"} body for err.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":    apperr.CodeOf(err),
		"message": apperr.Message(err),
	})
}

func (h *Handler) badRequest(c *gin.Context, op, msg string) {
	h.respondError(c, apperr.Invalid(op, msg))
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
