package handlers

import (
	"context"

	_ "task_manager/docs"
	"task_manager/internal/logger"
	"task_manager/internal/service"
	"task_manager/internal/session"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultCookieName = "sid"

// Pinger reports whether the backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	CookieName   string
	SecureCookie bool
	// DB is pinged by /health; nil skips the check.
	DB Pinger
}

// Handler wires HTTP layer to services, sessions and logging.
type Handler struct {
	services *service.Service
	sessions *session.Manager
	opts     Options
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, sessions *session.Manager, opts Options, log *logger.Logger) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	return &Handler{services: services, sessions: sessions, opts: opts, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/", h.root)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api", h.sessionMiddleware)
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", h.listTasks)
			tasks.POST("", h.addTask)
			tasks.DELETE("/:index", h.deleteTask)
			tasks.GET("/ws", h.wsConnect)
		}
	}
}
