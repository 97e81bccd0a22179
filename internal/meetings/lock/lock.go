// Package lock serializes meeting creation per bookable resource. Every
// create takes one lock for its room and one per participant; two creates
// that share any resource cannot interleave their check and write.
package lock

import (
	"context"
	"errors"
	"slices"
)

const (
	roomPrefix   = "room:"
	memberPrefix = "member:"
)

// Lease holds every lock taken by one Acquire call.
type Lease interface {
	// Confirm checks that every lock is still owned by this lease and renews
	// its TTL. It fails with meetingserrors.ErrLockExpired once any lock has
	// lapsed, since another request may have taken it since.
	Confirm(ctx context.Context) error
	Release(ctx context.Context) error
}

type Locker interface {
	// Acquire takes all keys or none. It fails fast with
	// meetingserrors.ErrSlotLocked when any key is held elsewhere.
	Acquire(ctx context.Context, keys []string) (Lease, error)
}

func RoomKey(roomID string) string {
	return roomPrefix + roomID
}

func MemberKey(memberID string) string {
	return memberPrefix + memberID
}

// MeetingKeys lists the lock keys covering a room and its participants.
func MeetingKeys(roomID string, memberIDs []string) []string {
	keys := make([]string, 0, len(memberIDs)+1)
	keys = append(keys, RoomKey(roomID))
	for _, id := range memberIDs {
		keys = append(keys, MemberKey(id))
	}
	return keys
}

type keyFunc func(ctx context.Context, key string) error

type lease struct {
	held   []string
	renew  keyFunc
	unlock keyFunc
}

func (l *lease) Confirm(ctx context.Context) error {
	for _, key := range l.held {
		if err := l.renew(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (l *lease) Release(ctx context.Context) error {
	var errs []error
	for i := len(l.held) - 1; i >= 0; i-- {
		if err := l.unlock(ctx, l.held[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// acquireAll locks keys in sorted order so that concurrent callers agree on
// ordering, and unwinds on the first failure.
func acquireAll(ctx context.Context, keys []string, lock, renew, unlock keyFunc) (Lease, error) {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	l := &lease{
		held:   make([]string, 0, len(ordered)),
		renew:  renew,
		unlock: unlock,
	}
	for _, key := range ordered {
		if err := lock(ctx, key); err != nil {
			_ = l.Release(context.WithoutCancel(ctx))
			return nil, err
		}
		l.held = append(l.held, key)
	}

	return l, nil
}
