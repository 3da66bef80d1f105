package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/app"
	"github.com/huddle-dev/huddle/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HuddleSessions", store))
	r.Use(ClientTokenMiddleware())

	ctl := NewController(coord)
	docCtl := NewDocController(coord, ctl)

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.GET("/sessions", ctl.ListSessions)
	api.POST("/sessions/:name/join", ctl.Join)
	api.POST("/sessions/:name/leave", ctl.Leave)
	api.POST("/sessions/:name/run", ctl.Run)
	api.GET("/jobs/:token", ctl.Job)

	api.GET("/sessions/:name/ws/doc", func(c *gin.Context) {
		log.Info().
			Str("module", "adapters.http").
			Str("client", c.GetString("client_token")).
			Str("session", c.Param("name")).
			Msg("ws doc endpoint hit")
		docCtl.HandleDoc(ctx, c)
	})

	return r
}
