package lock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roomly/internal/meetings/repository"
	"roomly/pkg/model"
)

type mongoLocker struct {
	repo repository.SlotLockRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewMongoLocker stores locks as documents in the slot lock collection.
// Expired documents are reclaimed on contention and by the Sweeper.
func NewMongoLocker(repo repository.SlotLockRepository, ttl time.Duration) Locker {
	return &mongoLocker{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

func (l *mongoLocker) Acquire(ctx context.Context, keys []string) (Lease, error) {
	owner := uuid.NewString()

	return acquireAll(ctx, keys,
		func(ctx context.Context, key string) error {
			return l.repo.Create(ctx, &model.SlotLock{
				ID:        key,
				Owner:     owner,
				ExpiresAt: l.now().UTC().Add(l.ttl),
			})
		},
		func(ctx context.Context, key string) error {
			now := l.now().UTC()
			return l.repo.Renew(ctx, key, owner, now, now.Add(l.ttl))
		},
		func(ctx context.Context, key string) error {
			return l.repo.Delete(ctx, key, owner)
		},
	)
}
