package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
	"github.com/angelmondragon/vendorcart-backend/pkg/metrics"
)

const (
	topUpClaimReleaseJobName = "topup_claim_release"
	topUpExpiryJobName       = "topup_expiry"

	defaultClaimTimeout = 10 * time.Minute
	defaultTopUpWindow  = 72 * time.Hour

	topUpExpiredReason = "top-up window expired"
)

type staleClaimReleaser interface {
	ReleaseStaleClaims(ctx context.Context, cutoff time.Time) (int64, error)
}

type pendingExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

// TopUpClaimReleaseJobParams configure the job that frees abandoned replay claims.
type TopUpClaimReleaseJobParams struct {
	Logger       *logger.Logger
	Repo         staleClaimReleaser
	Metrics      *metrics.CronJobMetrics
	ClaimTimeout time.Duration
}

type topUpClaimReleaseJob struct {
	logg    *logger.Logger
	repo    staleClaimReleaser
	metrics *metrics.CronJobMetrics
	timeout time.Duration
	now     func() time.Time
}

// NewTopUpClaimReleaseJob returns top-ups stuck in processing to pending once
// their replay claim is older than the timeout.
func NewTopUpClaimReleaseJob(params TopUpClaimReleaseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("top-up repository required")
	}
	timeout := params.ClaimTimeout
	if timeout <= 0 {
		timeout = defaultClaimTimeout
	}
	return &topUpClaimReleaseJob{
		logg:    params.Logger,
		repo:    params.Repo,
		metrics: params.Metrics,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

func (j *topUpClaimReleaseJob) Name() string { return topUpClaimReleaseJobName }

func (j *topUpClaimReleaseJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.timeout)
	released, err := j.repo.ReleaseStaleClaims(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("release stale top-up claims: %w", err)
	}
	j.metrics.AddAffected(topUpClaimReleaseJobName, released)
	if released > 0 {
		j.logg.Warn(j.logg.WithField(ctx, "released", released), "top-up claims released")
	}
	return nil
}

// TopUpExpiryJobParams configure the job that fails top-ups never funded.
type TopUpExpiryJobParams struct {
	Logger  *logger.Logger
	Repo    pendingExpirer
	Metrics *metrics.CronJobMetrics
	Window  time.Duration
}

type topUpExpiryJob struct {
	logg    *logger.Logger
	repo    pendingExpirer
	metrics *metrics.CronJobMetrics
	window  time.Duration
	now     func() time.Time
}

func NewTopUpExpiryJob(params TopUpExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("top-up repository required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultTopUpWindow
	}
	return &topUpExpiryJob{
		logg:    params.Logger,
		repo:    params.Repo,
		metrics: params.Metrics,
		window:  window,
		now:     time.Now,
	}, nil
}

func (j *topUpExpiryJob) Name() string { return topUpExpiryJobName }

func (j *topUpExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)
	expired, err := j.repo.ExpirePending(ctx, cutoff, topUpExpiredReason)
	if err != nil {
		return fmt.Errorf("expire pending top-ups: %w", err)
	}
	j.metrics.AddAffected(topUpExpiryJobName, expired)
	j.logg.Info(j.logg.WithField(ctx, "expired", expired), "pending top-ups expired")
	return nil
}
