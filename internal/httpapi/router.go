package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tabsync/internal/config"
	"tabsync/internal/handlers"
	"tabsync/internal/logging"
	"tabsync/internal/middleware"
)

func NewRouter(cfg config.Config, log *logging.Logger, sync *handlers.SyncHandler, sessions *handlers.SessionHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-User-ID"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/tabsync/v1")
	v1.Use(middleware.Auth(cfg))
	{
		v1.GET("/marker/:instanceId", sync.GetMarker)
		v1.POST("/events/:instanceId", sync.ProcessEvents)
		v1.GET("/events/:instanceId", sync.ListEvents)
		v1.GET("/stats/:instanceId", sync.GetStats)

		v1.POST("/sessions", sessions.CreateSession)
		v1.GET("/sessions", sessions.ListSessions)
		v1.POST("/sessions/batch", sessions.BatchCreateSessions)
		v1.GET("/sessions/:sessionId", sessions.GetSession)
		v1.PUT("/sessions/:sessionId", sessions.UpdateSession)
		v1.DELETE("/sessions/:sessionId", sessions.DeleteSession)
	}
	return r
}
