package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
)

type fakeTopUpRepo struct {
	releaseCutoff time.Time
	expireCutoff  time.Time
	reason        string
	affected      int64
	err           error
}

func (f *fakeTopUpRepo) ReleaseStaleClaims(_ context.Context, cutoff time.Time) (int64, error) {
	f.releaseCutoff = cutoff
	return f.affected, f.err
}

func (f *fakeTopUpRepo) ExpirePending(_ context.Context, cutoff time.Time, reason string) (int64, error) {
	f.expireCutoff = cutoff
	f.reason = reason
	return f.affected, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestTopUpClaimReleaseJobUsesTimeout(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeTopUpRepo{affected: 2}
	job, err := NewTopUpClaimReleaseJob(TopUpClaimReleaseJobParams{Logger: testLogger(), Repo: repo, ClaimTimeout: 15 * time.Minute})
	require.NoError(t, err)
	job.(*topUpClaimReleaseJob).now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-15*time.Minute), repo.releaseCutoff)
	assert.Equal(t, topUpClaimReleaseJobName, job.Name())
}

func TestTopUpExpiryJobDefaultsWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeTopUpRepo{}
	job, err := NewTopUpExpiryJob(TopUpExpiryJobParams{Logger: testLogger(), Repo: repo})
	require.NoError(t, err)
	job.(*topUpExpiryJob).now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-defaultTopUpWindow), repo.expireCutoff)
	assert.Equal(t, topUpExpiredReason, repo.reason)
}

func TestTopUpJobsPropagateErrors(t *testing.T) {
	repo := &fakeTopUpRepo{err: errors.New("db down")}
	release, err := NewTopUpClaimReleaseJob(TopUpClaimReleaseJobParams{Logger: testLogger(), Repo: repo})
	require.NoError(t, err)
	assert.Error(t, release.Run(context.Background()))

	expiry, err := NewTopUpExpiryJob(TopUpExpiryJobParams{Logger: testLogger(), Repo: repo})
	require.NoError(t, err)
	assert.Error(t, expiry.Run(context.Background()))
}

func TestTopUpJobsRequireDependencies(t *testing.T) {
	_, err := NewTopUpClaimReleaseJob(TopUpClaimReleaseJobParams{Repo: &fakeTopUpRepo{}})
	assert.Error(t, err)
	_, err = NewTopUpExpiryJob(TopUpExpiryJobParams{Logger: testLogger()})
	assert.Error(t, err)
}
