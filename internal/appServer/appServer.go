package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/meetup-service/config"
	repository "github.com/ds124wfegd/meetup-service/internal/database/postgres"
	rediscache "github.com/ds124wfegd/meetup-service/internal/database/redis"
	"github.com/ds124wfegd/meetup-service/internal/service"
	"github.com/ds124wfegd/meetup-service/internal/transport"
	"github.com/ds124wfegd/meetup-service/internal/worker"

	"github.com/ds124wfegd/meetup-service/pkg/postgres"
	"github.com/ds124wfegd/meetup-service/pkg/queue"
	"github.com/ds124wfegd/meetup-service/pkg/redis"
	"github.com/ds124wfegd/meetup-service/pkg/scheduler"
	"github.com/ds124wfegd/meetup-service/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	meetupRepo := repository.NewMeetupRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize Telegram bot
	var telegramBot *telegram.Bot
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegramBot = telegram.NewBot(cfg.Telegram.BotToken)
		logrus.Info("Telegram bot initialized")
	} else {
		logrus.Warn("Telegram bot token not provided, notifications disabled")
	}

	// Initialize Redis client and subscription cache
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	subscriptionCache := rediscache.NewSubscriptionCache(redisClient, cfg.Subscription.CacheTTL)

	// Initialize task queue
	var redisQueue queue.Queue
	var taskPublisher service.TaskPublisher

	redisConfig := queue.DefaultRedisQueueConfig()
	redisConfig.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisConfig.Password = cfg.Redis.Password
	redisConfig.DB = cfg.Redis.DB

	retryManager := queue.NewRetryManager(redisConfig.MaxRetries, redisConfig.BaseDelay)
	dlqHandler := queue.NewDefaultDLQHandler(redisClient, redisConfig.DLQ, redisConfig.MainQueue)

	redisQueue, err = queue.NewRedisQueue(redisConfig, retryManager, dlqHandler)
	if err != nil {
		logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
		redisQueue = nil
	} else {
		logrus.Info("Redis queue initialized")
		// Создаем адаптер для очереди
		taskPublisher = service.NewQueueAdapter(redisQueue)
	}

	// Notifier доставляет уведомления напрямую, если очередь недоступна
	var notifier service.Notifier
	if telegramBot != nil {
		notifier = service.NewTelegramNotifier(telegramBot)
	}

	// Initialize services
	meetupService := service.NewMeetupService(meetupRepo)
	userService := service.NewUserService(userRepo)
	subscriptionService := service.NewSubscriptionService(
		meetupRepo,
		userRepo,
		subscriptionCache,
		taskPublisher,
		notifier,
		cfg.Subscription.MinSeparationHours,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize task handler if queue is available
	if redisQueue != nil {
		var bot worker.TelegramBot
		if telegramBot != nil {
			bot = telegramBot
		}
		taskHandler := worker.NewTaskHandler(meetupService, userService, bot)

		// Start queue consumer
		go func() {
			if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}()
		logrus.Info("Queue subscriber started")

		// Initialize and start reminder scheduler
		reminderScheduler := scheduler.NewScheduler(
			meetupService,
			redisQueue,
			cfg.Worker.ReminderInterval,
			time.Duration(cfg.Worker.ReminderLeadHours)*time.Hour,
		)
		go reminderScheduler.Start(ctx)
		logrus.Info("Reminder scheduler started")
	}

	// Initialize handlers
	meetupHandler := transport.NewMeetupHandler(meetupService)
	subscriptionHandler := transport.NewSubscriptionHandler(subscriptionService)

	// Setup HTTP server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(meetupHandler, subscriptionHandler)); err != nil {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if redisQueue != nil {
		if err := redisQueue.Close(); err != nil {
			logrus.Errorf("error occured on queue shutting down: %s", err.Error())
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
