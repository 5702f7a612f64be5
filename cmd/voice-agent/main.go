package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/juberthrdzz/vapi-voice-agent/internal/cart"
	"github.com/juberthrdzz/vapi-voice-agent/internal/checkout"
	"github.com/juberthrdzz/vapi-voice-agent/internal/config"
	"github.com/juberthrdzz/vapi-voice-agent/internal/events"
	"github.com/juberthrdzz/vapi-voice-agent/internal/httpapi"
	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	"github.com/juberthrdzz/vapi-voice-agent/internal/notify"
	"github.com/juberthrdzz/vapi-voice-agent/internal/order"
	"github.com/juberthrdzz/vapi-voice-agent/internal/session"
	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
)

func main() {
	log := logrus.New()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := store.Dial(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer kv.Close()

	catalog := menu.New(cfg.MenuPath)
	if _, err := catalog.Menu(); err != nil {
		log.WithError(err).Fatal("failed to load menu")
	}
	log.Info("menu loaded and cached")

	carts := cart.NewEngine(kv, catalog, log)
	meta := session.NewStore(kv, log)
	orders := order.NewRepository(kv)

	var notifier checkout.Notifier
	if cfg.OrderIntakeURL != "" {
		notifier = notify.NewClient(cfg.OrderIntakeURL, log)
		log.WithField("url", cfg.OrderIntakeURL).Info("order intake notifications enabled")
	} else {
		log.Warn("ORDER_INTAKE_URL not set, outbound notifications disabled")
	}

	var publisher checkout.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			log.WithError(err).Fatal("failed to create event publisher")
		}
		defer pub.Close()
		publisher = pub
		log.Info("OrderCreated event publishing enabled")
	}

	checkoutSvc := checkout.NewService(carts, meta, orders, catalog, notifier, publisher, cfg.RestaurantID, log)
	handler := httpapi.NewHandler(carts, checkoutSvc, orders, catalog, meta, kv, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("voice agent API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		// fall through to shutdown so deferred closes still run
		log.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown error")
	}
}
