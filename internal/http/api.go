package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clearplot/internal/service"
	"clearplot/internal/storage"
)

// DefaultMaxUploadBytes bounds a multipart listing submission.
const DefaultMaxUploadBytes = 25 << 20

// Handler wires HTTP routes to domain services.
type Handler struct {
	users          service.UserService
	properties     service.PropertyService
	profiles       service.ProfileService
	images         storage.Service
	tokens         TokenVerifier
	log            logrus.FieldLogger
	maxUploadBytes int64
}

// Options carries the collaborators of a Handler.
type Options struct {
	Users          service.UserService
	Properties     service.PropertyService
	Profiles       service.ProfileService
	Images         storage.Service
	Tokens         TokenVerifier
	Logger         logrus.FieldLogger
	MaxUploadBytes int64
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		users:          opts.Users,
		properties:     opts.Properties,
		profiles:       opts.Profiles,
		images:         opts.Images,
		tokens:         opts.Tokens,
		log:            opts.Logger,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), loggingMiddleware(h.log))

	authed := requireAuth(h.tokens)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ClearPLOT backend is live!")
	})

	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.GET("/get-user/:id", h.getUser)
	router.PUT("/update-user", authed, h.updateUser)
	router.GET("/profile/:token", optionalAuth(h.tokens), h.profile)

	router.POST("/post-properties", authed, h.createProperty)
	router.GET("/get-properties", authed, h.browseProperties)
	router.POST("/predict-price", h.predictPrice)
	router.POST("/enhance-description", h.enhanceDescription)
	router.GET("/uploads/:name", h.serveImage)

	api := router.Group("/api")
	{
		api.GET("/properties", h.listOwnerProperties)
		api.GET("/properties/:id", h.getProperty)
		api.PUT("/properties/:id", authed, h.updateProperty)
		api.DELETE("/properties/:id", authed, h.deleteProperty)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func (h *Handler) serveImage(c *gin.Context) {
	obj, err := h.images.Resolve(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	if obj.RedirectURL != "" {
		c.Redirect(http.StatusTemporaryRedirect, obj.RedirectURL)
		return
	}
	c.File(obj.Path)
}
