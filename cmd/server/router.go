package main

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tankarena/config"
	"tankarena/network"
	"tankarena/protocol"
	"tankarena/room"
)

const requestTimeout = 2 * time.Second

func newRouter(cfg config.Config, rm *room.Room, enc protocol.Encoder) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	cc := cors.Config{
		AllowMethods: []string{http.MethodGet},
		AllowHeaders: []string{"Content-Type", "Origin"},
	}
	if slices.Contains(cfg.AllowedOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(cc))

	r.GET("/ws", gin.WrapH(network.NewHandler(rm, cfg, enc)))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		st, err := rm.Stats(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stats": st})
	})

	r.GET("/scoreboard", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		board, err := rm.Scoreboard(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, board)
	})

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	}
}
