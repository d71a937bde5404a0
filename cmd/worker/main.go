package main // background jobs: booking event log and uuid batches

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/queue"
	"github.com/iliyamo/restaurant-booking/internal/utils"
	"github.com/iliyamo/restaurant-booking/internal/uuidgen"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := utils.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.RabbitMQURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &queue.Consumer{URL: cfg.RabbitMQURL, LogPath: "logs/booking.log", Log: logger.WithField("job", "booking-log")}
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("booking consumer stopped")
			}
		}()
	} else {
		logger.Warn("RABBITMQ_URL not set, booking consumer disabled")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		g := uuidgen.NewGenerator(uuidgen.DirBucket{Dir: cfg.UUIDBucketDir}, logger.WithField("job", "uuid"))
		g.Every(ctx, cfg.UUIDInterval)
	}()

	logger.WithField("uuid_interval", cfg.UUIDInterval).Info("worker started")
	wg.Wait()
	logger.Info("worker stopped")
}
