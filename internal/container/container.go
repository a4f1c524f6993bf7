// Package container provides dependency injection.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vismaya/demandops/internal/apitrack"
	"github.com/vismaya/demandops/internal/budgetalert"
	"github.com/vismaya/demandops/internal/config"
	"github.com/vismaya/demandops/internal/jobs"
	"github.com/vismaya/demandops/internal/model"
	"github.com/vismaya/demandops/internal/notification"
	"github.com/vismaya/demandops/internal/policy"
	"github.com/vismaya/demandops/internal/provider"
	"github.com/vismaya/demandops/internal/provider/aws"
	"github.com/vismaya/demandops/internal/provider/demo"
	"github.com/vismaya/demandops/internal/report"
	"github.com/vismaya/demandops/internal/repository"
	"github.com/vismaya/demandops/internal/timeline"
)

// Container holds all application dependencies.
type Container struct {
	cfg              *config.Config
	logger           *slog.Logger
	db               *sql.DB
	tracker          *apitrack.Tracker
	providerRegistry *provider.Registry
	activeProvider   provider.Provider
	scheduler        *jobs.Scheduler

	// Repositories; nil in demo mode without a database.
	sampleRepo   repository.CostSampleRepository
	forecastRepo repository.ForecastRepository
	snapshotRepo repository.SnapshotRepository

	// Services
	policies     *policy.Set
	thresholds   model.BudgetThresholds
	projector    *timeline.Projector
	evaluator    *budgetalert.Evaluator
	notifService *notification.Service
	publisher    *report.S3Publisher
	pipeline     *jobs.Pipeline
}

// New creates a new dependency container.
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		cfg:     cfg,
		logger:  logger,
		tracker: apitrack.NewTracker(logger),
	}

	// Resolve budget thresholds, applying the policy file when configured.
	c.thresholds = model.BudgetThresholds{
		WarningLimit: cfg.Budget.WarningLimit,
		MaximumLimit: cfg.Budget.MaximumLimit,
	}
	if cfg.Budget.PolicyFile != "" {
		policies, err := policy.LoadFile(cfg.Budget.PolicyFile, c.thresholds)
		if err != nil {
			return nil, fmt.Errorf("failed to load budget policy: %w", err)
		}
		c.policies = policies
		c.thresholds = policies.Defaults
		logger.Info("budget policy loaded", "file", cfg.Budget.PolicyFile, "teams", len(policies.TeamNames()))
	}

	policyDefaults := model.DefaultThresholdPolicy()
	c.projector = timeline.NewProjector(policyDefaults)
	c.evaluator = budgetalert.NewEvaluator(policyDefaults)

	// Initialize providers
	c.providerRegistry = provider.NewRegistry()

	if cfg.DemoMode {
		demoProvider := demo.NewProvider()
		c.providerRegistry.Register("demo", demoProvider)
		c.activeProvider = demoProvider
		logger.Info("demo mode enabled, using simulated cost data")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err := repository.Open(ctx, cfg.Database.DSN(),
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.MaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := repository.EnsureSchema(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		c.db = db
		c.sampleRepo = repository.NewPostgresCostSampleRepository(db)
		c.forecastRepo = repository.NewPostgresForecastRepository(db)
		c.snapshotRepo = repository.NewPostgresSnapshotRepository(db)
		logger.Info("database connected", "host", cfg.Database.Host, "database", cfg.Database.Name)

		if cfg.AWS.Enabled {
			awsProvider, err := aws.NewProvider(cfg.AWS, c.tracker, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize AWS provider: %w", err)
			}
			c.providerRegistry.Register("aws", awsProvider)
			c.activeProvider = awsProvider
			logger.Info("AWS provider registered", "region", cfg.AWS.Region)

			if cfg.Report.S3Bucket != "" {
				s3Client := s3.NewFromConfig(awsProvider.SDKConfig())
				c.publisher = report.NewS3Publisher(s3Client, cfg.Report.S3Bucket, cfg.Report.S3Prefix, c.tracker, logger)
				logger.Info("report publisher initialized", "bucket", cfg.Report.S3Bucket)
			}
		}
	}

	if c.activeProvider == nil {
		return nil, fmt.Errorf("no cost provider configured: enable AWS or set DEMO_MODE=true")
	}
	if c.publisher == nil && cfg.Report.S3Bucket != "" {
		logger.Warn("report publishing requires the AWS provider, skipping", "bucket", cfg.Report.S3Bucket)
	}

	// Initialize notification service
	var webhookURLs []string
	if cfg.Notification.WebhookURLs != "" {
		webhookURLs = strings.Split(cfg.Notification.WebhookURLs, ",")
	}
	c.notifService = notification.NewService(notification.Config{
		SlackWebhookURL: cfg.Notification.SlackWebhookURL,
		EmailSMTPHost:   cfg.Notification.EmailSMTPHost,
		EmailSMTPPort:   cfg.Notification.EmailSMTPPort,
		EmailFrom:       cfg.Notification.EmailFrom,
		EmailPassword:   cfg.Notification.EmailPassword,
		WebhookURLs:     webhookURLs,
	}, logger)

	c.pipeline = jobs.NewPipeline(jobs.PipelineConfig{
		Provider:   c.activeProvider,
		Projector:  c.projector,
		Evaluator:  c.evaluator,
		Thresholds: c.thresholds,
		Notifier:   c.notifService,
		Samples:    c.sampleRepo,
		Forecasts:  c.forecastRepo,
		Snapshots:  c.snapshotRepo,
		Publisher:  c.publisher,
		Logger:     logger,
	})

	c.scheduler = jobs.NewScheduler(logger)

	return c, nil
}

// Start registers and starts background jobs.
func (c *Container) Start(ctx context.Context) error {
	if err := c.scheduler.Register("cost-sync", c.cfg.Jobs.CostSyncSchedule, c.pipeline.SyncCosts); err != nil {
		return fmt.Errorf("registering cost-sync job: %w", err)
	}
	if err := c.scheduler.Register("forecast", c.cfg.Jobs.ForecastSchedule, c.pipeline.RunForecastCycle); err != nil {
		return fmt.Errorf("registering forecast job: %w", err)
	}
	if err := c.scheduler.Register("budget-check", c.cfg.Jobs.BudgetCheckSchedule, c.pipeline.RunBudgetCheck); err != nil {
		return fmt.Errorf("registering budget-check job: %w", err)
	}

	return c.scheduler.Start()
}

// Stop gracefully stops all components.
func (c *Container) Stop(ctx context.Context) error {
	c.logger.Info("stopping container components")

	if c.scheduler != nil {
		c.scheduler.Stop()
	}

	if c.providerRegistry != nil {
		c.providerRegistry.Close()
	}

	if c.db != nil {
		c.db.Close()
	}

	return nil
}

// Accessors

func (c *Container) Config() *config.Config                                { return c.cfg }
func (c *Container) Logger() *slog.Logger                                  { return c.logger }
func (c *Container) DB() *sql.DB                                           { return c.db }
func (c *Container) Tracker() *apitrack.Tracker                            { return c.tracker }
func (c *Container) ProviderRegistry() *provider.Registry                  { return c.providerRegistry }
func (c *Container) Provider() provider.Provider                           { return c.activeProvider }
func (c *Container) Scheduler() *jobs.Scheduler                            { return c.scheduler }
func (c *Container) CostSampleRepository() repository.CostSampleRepository { return c.sampleRepo }
func (c *Container) ForecastRepository() repository.ForecastRepository     { return c.forecastRepo }
func (c *Container) SnapshotRepository() repository.SnapshotRepository     { return c.snapshotRepo }
func (c *Container) Policies() *policy.Set                                 { return c.policies }
func (c *Container) Thresholds() model.BudgetThresholds                    { return c.thresholds }
func (c *Container) Projector() *timeline.Projector                        { return c.projector }
func (c *Container) Evaluator() *budgetalert.Evaluator                     { return c.evaluator }
func (c *Container) NotificationService() *notification.Service            { return c.notifService }
func (c *Container) ReportPublisher() *report.S3Publisher                  { return c.publisher }
func (c *Container) Pipeline() *jobs.Pipeline                              { return c.pipeline }
