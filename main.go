package main

import (
	"context"
	"log"
	"time"

	"github.com/attendly/checkin-console/config"
	"github.com/attendly/checkin-console/internal/auth"
	"github.com/attendly/checkin-console/internal/consumer"
	"github.com/attendly/checkin-console/internal/gateway"
	"github.com/attendly/checkin-console/internal/handler"
	"github.com/attendly/checkin-console/internal/middleware"
	"github.com/attendly/checkin-console/internal/roster"
	"github.com/attendly/checkin-console/internal/scanner"
	"github.com/attendly/checkin-console/internal/service"
	"github.com/attendly/checkin-console/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokens := auth.NewTokenStore(cfg.APIToken)
	gw := gateway.NewHTTPGateway(cfg.EventServiceURL, tokens)
	store := roster.NewStore()

	// RabbitMQ is optional: without a broker the console still works, it
	// just neither broadcasts check-ins nor picks up remote ticket sales.
	var publisher service.ActivityPublisher
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	svc := service.NewCheckInService(gw, store, tokens, publisher, cfg.EventID, func() {
		log.Printf("[Auth] credential rejected, operator redirected to %s", middleware.SignInPath)
	})

	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewTicketConsumer(svc, cfg.EventID).Start(msgs)
	}

	// Warm the roster; a failure here is not fatal, the first request can
	// retry via the refresh endpoint.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Refresh(ctx); err != nil {
		log.Printf("initial roster refresh failed: %v", err)
	}
	cancel()

	scan := scanner.New(svc, cfg.ScanResetDelay)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "checkin-console"})
	})

	handler.NewGuestHandler(svc, scan).RegisterRoutes(e)

	log.Printf("Check-In Console starting on :%s (event %s)", cfg.ServerPort, cfg.EventID)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
