package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLockHeld means another runner owns the job right now.
var ErrLockHeld = errors.New("job lock already held")

// JobLock marks a named background job as running. Owner ties the row to the
// process instance that took it.
type JobLock struct {
	Name  string
	Owner uuid.UUID
}

// JobLockRepository is a cross-replica mutex per job name. A lock older than
// maxAge is considered abandoned by a crashed runner and may be taken over;
// without that, one unclean shutdown would disable the job on every replica
// forever.
type JobLockRepository interface {
	Acquire(ctx context.Context, lock JobLock, maxAge time.Duration) error
	Release(ctx context.Context, lock JobLock) error
}
