// Package aws implements the AWS cost and resource provider on Cost Explorer
// and EC2.
package aws

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/vismaya/demandops/internal/apitrack"
	"github.com/vismaya/demandops/internal/config"
	"github.com/vismaya/demandops/internal/provider"
)

// Provider implements provider.Provider against live AWS APIs.
type Provider struct {
	name         string
	cfg          aws.Config
	costExplorer *costexplorer.Client
	ec2          *ec2.Client
	tracker      *apitrack.Tracker
	logger       *slog.Logger
}

// NewProvider creates a new AWS provider.
func NewProvider(cfg config.AWSConfig, tracker *apitrack.Tracker, logger *slog.Logger) (*Provider, error) {
	ctx := context.Background()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	// Use explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Handle role assumption if configured
	if cfg.AssumeRoleARN != "" {
		stsClient := sts.NewFromConfig(awsCfg)
		creds := stscreds.NewAssumeRoleProvider(stsClient, cfg.AssumeRoleARN, func(o *stscreds.AssumeRoleOptions) {
			if cfg.ExternalID != "" {
				o.ExternalID = aws.String(cfg.ExternalID)
			}
		})
		awsCfg.Credentials = aws.NewCredentialsCache(creds)
	}

	return &Provider{
		name:         "aws",
		cfg:          awsCfg,
		costExplorer: costexplorer.NewFromConfig(awsCfg),
		ec2:          ec2.NewFromConfig(awsCfg),
		tracker:      tracker,
		logger:       logger,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// SDKConfig exposes the resolved AWS configuration so other components, such
// as the report publisher, can build clients that share the same credentials.
func (p *Provider) SDKConfig() aws.Config {
	return p.cfg
}

// Health checks AWS connectivity with a one-day cost query.
func (p *Provider) Health(ctx context.Context) provider.HealthStatus {
	p.tracker.TrackCostExplorerCall("GetCostAndUsage")
	_, err := p.costExplorer.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(time.Now().AddDate(0, 0, -1).Format("2006-01-02")),
			End:   aws.String(time.Now().Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
	})

	status := provider.HealthStatus{
		LastChecked: time.Now(),
		Details:     map[string]any{"region": p.cfg.Region},
	}

	if err != nil {
		status.Healthy = false
		status.Message = fmt.Sprintf("AWS health check failed: %v", err)
	} else {
		status.Healthy = true
		status.Message = "AWS provider healthy"
	}

	return status
}

// Close cleans up provider resources.
func (p *Provider) Close() error {
	return nil
}
