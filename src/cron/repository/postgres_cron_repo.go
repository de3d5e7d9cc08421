package repository

import (
	"context"
	"errors"
	"time"

	"github.com/blockhaven/backend/src/cron/domain"
	"github.com/blockhaven/backend/src/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ domain.JobLockRepository = (*JobLockRepo)(nil)

type JobLock struct {
	Name      string    `gorm:"size:100;primarykey"`
	Owner     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}

func (JobLock) TableName() string { return "job_locks" }

type JobLockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobLockRepo(db *gorm.DB, log *logger.Logger) *JobLockRepo {
	if err := db.AutoMigrate(&JobLock{}); err != nil {
		log.Fatalf("failed to migrate job_locks schema: %v", err)
	}
	return &JobLockRepo{db: db, log: log}
}

// Acquire inserts the lock row; a primary-key conflict means another runner
// holds the job. Rows older than maxAge are reaped first: their owner died
// before reaching Release, and an abandoned row must not block the job
// permanently. Reap and insert share one transaction so two racing runners
// cannot both take over the same stale lock.
func (r *JobLockRepo) Acquire(ctx context.Context, lock domain.JobLock, maxAge time.Duration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cutoff := time.Now().Add(-maxAge)
		stale := tx.Where("name = ? AND created_at < ?", lock.Name, cutoff).Delete(&JobLock{})
		if stale.Error != nil {
			return stale.Error
		}
		if stale.RowsAffected > 0 {
			r.log.Warnf("job %s: reaped stale lock older than %s", lock.Name, maxAge)
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&JobLock{Name: lock.Name, Owner: lock.Owner})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrLockHeld
		}
		return nil
	})
}

// Release only removes the row if the caller still owns it; a lock that was
// reaped and re-acquired by another runner stays put.
func (r *JobLockRepo) Release(ctx context.Context, lock domain.JobLock) error {
	err := r.db.WithContext(ctx).
		Where("name = ? AND owner = ?", lock.Name, lock.Owner).
		Delete(&JobLock{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
