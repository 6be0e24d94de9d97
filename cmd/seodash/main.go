package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/archive"
	"github.com/dealerseo/seodash/internal/pkg/assistant"
	"github.com/dealerseo/seodash/internal/pkg/cache"
	"github.com/dealerseo/seodash/internal/pkg/database"
	"github.com/dealerseo/seodash/internal/pkg/env"
	"github.com/dealerseo/seodash/internal/pkg/jobqueue"
	"github.com/dealerseo/seodash/internal/pkg/mail"
	"github.com/dealerseo/seodash/internal/pkg/notification"
	"github.com/dealerseo/seodash/internal/pkg/router"
	"github.com/dealerseo/seodash/internal/pkg/security"
	"github.com/dealerseo/seodash/internal/pkg/seoworks"
)

func main() {
	app, manager := NewApplication()
	manager.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("[Server] shutting down")
		manager.Stop()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	manager := jobqueue.GetManager()
	queue := manager.GetQueue()

	tokenCfg := security.LoadTokenConfig()
	if tokenCfg.Secret == "" {
		log.Fatal("[Server] JWT_SECRET is required")
	}

	opts := router.Options{
		Repos:         repos,
		Token:         tokenCfg,
		Seoworks:      seoworks.LoadConfig(),
		Notifier:      notification.NewQueueNotifier(queue),
		ProgressCache: cache.NewJSONStore(cache.GetClient(), "progress:", 5*time.Minute),
		Limiter: router.LimiterConfig{
			Max:     env.GetEnvInt("API_RATE_LIMIT", 120),
			Storage: router.NewLimiterStorage(),
		},
	}
	if opts.Seoworks.Permissive() {
		log.Warn("[Webhook] permissive mode: unknown SEOWorks task ids will create requests")
	}

	var send notification.MailFunc
	if mail.Enabled() {
		send = mail.SendMail
	}
	queue.RegisterHandler(jobqueue.JobTypeStatusNotification, notification.NewProcessor(db, send).Handle)

	archiveCfg, err := archive.LoadConfig()
	if err != nil {
		log.Warnf("[Archive] disabled: %v", err)
	} else if archiveCfg.IsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		uploader, err := archive.NewClient(ctx, archiveCfg)
		cancel()
		if err != nil {
			log.Warnf("[Archive] disabled: %v", err)
		} else {
			queue.RegisterHandler(jobqueue.JobTypeWebhookArchive, archive.NewJobHandler(archiveCfg, uploader))
			opts.Archiver = archive.NewQueueArchiver(queue)
		}
	}

	if aiCfg := assistant.LoadConfig(); aiCfg.Enabled() {
		opts.Completer = assistant.NewClient(aiCfg)
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: router.ErrorHandler(env.IsDev()),
	})

	// recovery and logging
	app.Use(recover.New(), requestid.New(), logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	// ROUTER
	services := router.Install(app, opts)

	manager.SetPeriodRollover(func(ctx context.Context) error {
		_, err := services.Quota.RolloverExpiredPeriods(ctx, time.Now().UTC())
		return err
	}, time.Duration(env.GetEnvInt("ROLLOVER_INTERVAL_MINUTES", 60))*time.Minute)

	return app, manager
}
