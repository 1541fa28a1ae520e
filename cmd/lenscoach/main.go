package main

import (
	"context"

	"github.com/lenscoach/lenscoach/pkg/coach"
	"github.com/lenscoach/lenscoach/pkg/config"
	"github.com/lenscoach/lenscoach/pkg/logger"
	"github.com/lenscoach/lenscoach/pkg/os"
)

var Version = "?"

func main() {
	conf := config.NewConfig()
	conf.ParseFlags()

	log := logger.NewConsole(conf.Coach.Debug, "lc", false)

	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	if conf.Webrtc.HasSinglePort() {
		lock, err := os.NewFileLock(conf.Coach.LockFile)
		if err != nil {
			log.Fatal().Err(err).Msg("couldn't create the lock file")
		}
		if ok, err := lock.TryLock(); !ok {
			log.Fatal().Err(err).Msg("another instance already owns the UDP mux port")
		}
		defer func() { _ = lock.Unlock() }()
	}

	c, err := coach.New(conf, log)
	if err != nil {
		log.Fatal().Err(err).Msg("service init failed")
	}
	c.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		if err := c.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("service shutdown errors")
		}
	}()
	<-os.ExpectTermination()
	cancel()
}
