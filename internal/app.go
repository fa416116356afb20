package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	fcm_adapter "findar-backend/internal/adapters/fcm"
	inline_adapter "findar-backend/internal/adapters/inline"
	logger_adapter "findar-backend/internal/adapters/logger"
	"findar-backend/internal/adapters/notifier"
	plancatalog_adapter "findar-backend/internal/adapters/plancatalog"
	postgres_adapter "findar-backend/internal/adapters/postgres"
	pushlog_adapter "findar-backend/internal/adapters/pushlog"
	rabbitmq_adapter "findar-backend/internal/adapters/rabbitmq"
	"findar-backend/internal/adapters/rest"
	scheduler_adapter "findar-backend/internal/adapters/scheduler"
	"findar-backend/internal/configs"
	"findar-backend/internal/constants"
	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/usecase"
	fluentlogger "findar-backend/pkg/fluent_logger"
	"findar-backend/pkg/postgres"
	"findar-backend/pkg/rabbitmq/rabbitmq_common"
	"findar-backend/pkg/rabbitmq/rabbitmq_consumer"
	"findar-backend/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server
	scheduler *scheduler_adapter.Scheduler
	notifier  *notifier.SSENotifier

	connManager     *rabbitmq_common.ConnectionManager
	pushPublisher   *rabbitmq_producer.Publisher
	pushJobListener port.EventListenerPort

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}
	baseLogger, err := app.initLoggers()
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger

	// every failure below releases what was already opened
	ok := false
	defer func() {
		if !ok {
			app.closeResources()
			if app.fluentClient != nil {
				app.fluentClient.Close()
			}
		}
	}()

	if appConfig.Database.AutoMigrate {
		if err := postgres_adapter.MigrateUp(appConfig.Database.URL); err != nil {
			appLogger.Error("Failed to apply migrations", err, nil)
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		appLogger.Info("Database migrations applied.", nil)
	}

	app.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL: appConfig.Database.URL,
		MaxConns:    int32(appConfig.Database.MaxConns),
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	listingRepo, err := postgres_adapter.NewPostgresListingRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing repository: %w", err)
	}
	planRepo, err := postgres_adapter.NewPostgresBoostingPlanRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create boosting plan repository: %w", err)
	}
	promotionRepo, err := postgres_adapter.NewPostgresPromotionRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create promotion repository: %w", err)
	}
	deviceRepo, err := postgres_adapter.NewPostgresDeviceRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create device repository: %w", err)
	}
	savedRepo, err := postgres_adapter.NewPostgresSavedListingRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create saved listing repository: %w", err)
	}
	reportRepo, err := postgres_adapter.NewPostgresReportRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create report repository: %w", err)
	}
	userRepo, err := postgres_adapter.NewPostgresUserRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create user repository: %w", err)
	}
	appLogger.Info("All repositories initialized.", nil)

	transport, err := newPushTransport(appConfig.Push)
	if err != nil {
		appLogger.Error("Failed to initialize push transport", err, nil)
		return nil, err
	}
	appLogger.Info("Push transport initialized.", port.Fields{"provider": appConfig.Push.Provider})

	app.notifier = notifier.NewSSENotifier(baseLogger)

	sendUC := usecase.NewSendNotificationUseCase(transport, deviceRepo)

	var pushQueue port.PushJobQueuePort
	if appConfig.RabbitMQ.Enabled {
		pushQueue, err = app.initPushJobBroker(baseLogger, sendUC)
		if err != nil {
			return nil, err
		}
	} else {
		pushQueue, err = inline_adapter.NewPushJobQueue(sendUC)
		if err != nil {
			return nil, err
		}
		appLogger.Warn("RabbitMQ is disabled, push jobs are delivered inline without retries.", nil)
	}

	maxParallel := appConfig.Push.MaxParallelDeliveries

	searchUC := usecase.NewAdvancedSearchUseCase(listingRepo)
	recentUC := usecase.NewRecentListingsUseCase(listingRepo)
	sponsoredUC := usecase.NewGetSponsoredListingsUseCase(listingRepo)
	detailsUC := usecase.NewGetListingDetailsUseCase(listingRepo)
	createListingUC := usecase.NewCreateListingUseCase(listingRepo)
	editListingUC := usecase.NewEditListingUseCase(listingRepo)
	toggleUC := usecase.NewToggleListingActiveUseCase(listingRepo)
	myListingsUC := usecase.NewGetMyListingsUseCase(listingRepo)
	reportUC := usecase.NewReportListingUseCase(listingRepo, reportRepo)

	saveUC := usecase.NewSaveListingUseCase(listingRepo, savedRepo)
	unsaveUC := usecase.NewUnsaveListingUseCase(savedRepo)
	savedUC := usecase.NewGetSavedListingsUseCase(savedRepo)

	listPlansUC := usecase.NewListBoostingPlansUseCase(planRepo)
	createPlanUC := usecase.NewCreateBoostingPlanUseCase(planRepo, pushQueue)
	syncCatalogUC := usecase.NewSyncPlanCatalogUseCase(planRepo, createPlanUC)
	boostUC := usecase.NewBoostListingUseCase(listingRepo, planRepo, promotionRepo, userRepo)

	registerDeviceUC := usecase.NewRegisterDeviceUseCase(deviceRepo)
	trackActivityUC := usecase.NewTrackActivityUseCase(userRepo)
	scanUC := usecase.NewScanExpiringBoostsUseCase(promotionRepo, deviceRepo)
	checkBoostsUC := usecase.NewCheckExpiringBoostsUseCase(scanUC, pushQueue, app.notifier, maxParallel)
	remindUC := usecase.NewRemindInactiveUsersUseCase(userRepo, deviceRepo, pushQueue, maxParallel)
	appLogger.Info("All use cases initialized.", nil)

	if err := syncPlanCatalog(baseLogger, appConfig.Catalog.PlansFile, syncCatalogUC); err != nil {
		appLogger.Error("Failed to sync boosting plan catalog", err, nil)
		return nil, err
	}

	app.scheduler = scheduler_adapter.NewScheduler(baseLogger)
	boostSpec, engagementSpec := appConfig.Scheduler.BoostExpiryCron, appConfig.Scheduler.EngagementCron
	if !appConfig.Scheduler.Enabled {
		// jobs stay available to the manual trigger
		boostSpec, engagementSpec = "", ""
	}
	if err := app.scheduler.Register(constants.JobBoostExpiry, boostSpec, scheduler_adapter.BoostExpiryJob(checkBoostsUC)); err != nil {
		return nil, err
	}
	if err := app.scheduler.Register(constants.JobEngagementReminder, engagementSpec, scheduler_adapter.EngagementReminderJob(remindUC)); err != nil {
		return nil, err
	}
	appLogger.Info("Scheduler configured.", port.Fields{
		"enabled":         appConfig.Scheduler.Enabled,
		"boost_expiry":    boostSpec,
		"engagement_cron": engagementSpec,
	})

	handlers := rest.Handlers{
		Listings: rest.NewListingHandler(
			searchUC, recentUC, sponsoredUC, detailsUC,
			createListingUC, editListingUC, toggleUC, myListingsUC, reportUC,
		),
		SavedListings: rest.NewSavedListingHandler(saveUC, unsaveUC, savedUC),
		Boosting:      rest.NewBoostingHandler(listPlansUC, createPlanUC, boostUC),
		Notifications: rest.NewNotificationHandler(registerDeviceUC, sendUC, app.notifier),
		Jobs:          rest.NewJobHandler(app.scheduler),
		TrackActivity: trackActivityUC,
	}
	app.apiServer = rest.NewServer(rest.ServerConfig{
		Port:           appConfig.Rest.PORT,
		AllowedOrigins: appConfig.Rest.AllowedOrigins,
		ServiceToken:   appConfig.Internal.ServiceToken,
	}, handlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	ok = true
	return app, nil
}

func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		IsJSON:   cfg.StdoutLogger.JSON,
		UseColor: !cfg.StdoutLogger.JSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		client, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(client, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create fluentbit adapter: %w", err)
		}
		a.fluentClient = client
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers),
		"fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

func newPushTransport(cfg configs.PushConfig) (port.PushTransportPort, error) {
	if cfg.Provider == "fcm" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return fcm_adapter.NewTransport(ctx, fcm_adapter.Config{
			CredentialsFile: cfg.CredentialsFile,
			ProjectID:       cfg.ProjectID,
		})
	}
	return pushlog_adapter.NewTransport(), nil
}

// initPushJobBroker wires the publisher used by the use cases and the worker that consumes it.
func (a *App) initPushJobBroker(baseLogger port.LoggerPort, sendUC *usecase.SendNotificationUseCase) (port.PushJobQueuePort, error) {
	cfg := a.config.RabbitMQ

	connBridge := logger_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: cfg.URL}, connBridge)
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

	publisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:    constants.PushJobsExchange,
		ExchangeType:    constants.PushJobsExchangeType,
		DurableExchange: true,
		DeclareExchange: true,
		Logger:          logger_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_publisher"})),
	}, connManager)
	if err != nil {
		a.logger.Error("Failed to create push job publisher", err, nil)
		return nil, fmt.Errorf("failed to create push job publisher: %w", err)
	}
	a.pushPublisher = publisher

	queue, err := rabbitmq_adapter.NewPushJobPublisherAdapter(publisher, constants.RoutingKeyPushJobs)
	if err != nil {
		return nil, err
	}

	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		QueueName:       constants.QueuePushJobs,
		DurableQueue:    true,
		ExchangeName:    constants.PushJobsExchange,
		ExchangeType:    constants.PushJobsExchangeType,
		DurableExchange: true,
		RoutingKey:      constants.RoutingKeyPushJobs,
		PrefetchCount:   cfg.Prefetch,
		ConsumerTag:     constants.ConsumerTagPushJobs,

		EnableRetry:        true,
		RetryExchange:      constants.PushJobsRetryExchange,
		RetryQueue:         constants.PushJobsRetryQueue,
		RetryTTLMillis:     int(cfg.RetryTTL.Milliseconds()),
		FinalDLXExchange:   constants.FinalDLXExchange,
		FinalDLQ:           constants.FinalDLQ,
		FinalDLQRoutingKey: constants.FinalDLQRoutingKey,
		MaxRetries:         cfg.MaxRetries,
	}
	listener, err := rabbitmq_adapter.NewPushJobConsumerAdapter(consumerCfg, sendUC, baseLogger, connManager)
	if err != nil {
		a.logger.Error("Failed to create push job consumer", err, nil)
		return nil, fmt.Errorf("failed to create push job consumer adapter: %w", err)
	}
	a.pushJobListener = listener
	a.logger.Info("RabbitMQ push job pipeline initialized.", nil)

	return queue, nil
}

// syncPlanCatalog creates the catalog plans that are missing. A missing file only disables the sync.
func syncPlanCatalog(baseLogger port.LoggerPort, path string, uc *usecase.SyncPlanCatalogUseCase) error {
	logger := baseLogger.WithFields(port.Fields{"component": "plan_catalog", "path": path})

	plans, err := plancatalog_adapter.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("Plan catalog not found, skipping sync", nil)
		return nil
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = contextkeys.ContextWithLogger(ctx, logger)

	created, err := uc.Execute(ctx, plans)
	if err != nil {
		return fmt.Errorf("failed to sync plan catalog: %w", err)
	}
	logger.Info("Plan catalog synced", port.Fields{"created": created, "catalog_size": len(plans)})
	return nil
}

func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	errorsCh := make(chan error, 2)

	a.logger.Info("Application is starting...", nil)

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	if a.pushJobListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener": "Push Jobs Listener"})
			listenerLogger.Info("Starting listener...", nil)
			if err := a.pushJobListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("push jobs listener error: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully.", nil)
		}()
	}

	a.scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	a.shutdown(cancelApp, &wg)
	return runErr
}

// shutdown stops intake first (HTTP, scheduler, consumer) and closes shared resources last.
func (a *App) shutdown(cancelApp context.CancelFunc, wg *sync.WaitGroup) {
	a.logger.Info("Shutdown sequence initiated...", nil)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// open streams end when the notifier closes, so the server can drain
	a.notifier.Close()
	if err := a.apiServer.Stop(ctx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}
	if err := a.scheduler.Stop(ctx); err != nil {
		a.logger.Error("Error stopping scheduler", err, nil)
	}

	cancelApp()
	a.logger.Info("Waiting for background processes to finish...", nil)
	wg.Wait()

	a.closeResources()
	a.logger.Info("Application shut down gracefully.", nil)
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Error closing fluent client: %v\n", err)
		}
		a.fluentClient = nil
	}
}

func (a *App) closeResources() {
	if a.pushJobListener != nil {
		if err := a.pushJobListener.Close(); err != nil {
			a.logger.Error("Error closing push jobs listener", err, nil)
		}
		a.pushJobListener = nil
	}
	if a.pushPublisher != nil {
		if err := a.pushPublisher.Close(); err != nil {
			a.logger.Error("Error closing push job publisher", err, nil)
		}
		a.pushPublisher = nil
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
		a.connManager = nil
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
		a.dbPool = nil
	}
}
