package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tankarena/config"
	"tankarena/logger"
	"tankarena/protocol"
	"tankarena/room"
)

func main() {
	envErr := config.InitConfig()
	cfg, err := config.FromEnv()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, using process environment")
	} else {
		log.Info().Msg("loaded .env")
	}

	enc, err := protocol.NewEncoder(cfg.WireFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("wire format")
	}

	gin.SetMode(gin.ReleaseMode)
	rm := room.New(cfg, nil, enc)
	go rm.Run()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg, rm, enc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("wire", cfg.WireFormat).Msg("listening (ws endpoint: /ws)")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	rm.Stop()
	select {
	case <-rm.Done():
	case <-shutdown.Done():
		log.Warn().Msg("room did not stop in time")
	}
}
