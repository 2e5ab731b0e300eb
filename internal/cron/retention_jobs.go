package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/spa-backend/pkg/logger"
)

const (
	defaultCheckInRetentionDays  = 365
	defaultAnnouncementGraceDays = 30
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type checkInPurger interface {
	DeleteBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type announcementPurger interface {
	DeleteEndedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// purgeFunc deletes rows older than cutoff and reports how many went.
type purgeFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

// retentionJob deletes rows older than a fixed number of days, in one transaction.
type retentionJob struct {
	name  string
	logg  *logger.Logger
	db    txRunner
	purge purgeFunc
	days  int
	now   func() time.Time
}

// NewCheckInRetentionJob removes kiosk check-ins older than days.
func NewCheckInRetentionJob(logg *logger.Logger, db txRunner, repo checkInPurger, days int) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("check-in repository required")
	}
	if days <= 0 {
		days = defaultCheckInRetentionDays
	}
	job, err := newRetentionJob("checkin-retention", logg, db, repo.DeleteBefore, days)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// NewAnnouncementCleanupJob removes announcements that ended more than days ago.
func NewAnnouncementCleanupJob(logg *logger.Logger, db txRunner, repo announcementPurger, days int) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("announcement repository required")
	}
	if days <= 0 {
		days = defaultAnnouncementGraceDays
	}
	job, err := newRetentionJob("announcement-cleanup", logg, db, repo.DeleteEndedBefore, days)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func newRetentionJob(name string, logg *logger.Logger, db txRunner, purge purgeFunc, days int) (*retentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	return &retentionJob{name: name, logg: logg, db: db, purge: purge, days: days, now: time.Now}, nil
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.purge(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.days,
		"rows_deleted":   deleted,
	}), "cron.retention_complete")
	return nil
}
