package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockHeld means another run owns the lock.
	ErrLockHeld = errors.New("pipeline lock held by another run")
	// ErrLockLost means the lock expired or was taken over before release.
	ErrLockLost = errors.New("pipeline lock lost")
)

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out a single named lock with a TTL.
type Locker struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewLocker builds a locker over key. The TTL bounds how long a crashed
// run can block the next one.
func NewLocker(client redis.Cmdable, key string, ttl time.Duration) *Locker {
	return &Locker{client: client, key: key, ttl: ttl}
}

// Lock is a held lock.
type Lock struct {
	client redis.Cmdable
	key    string
	token  string
}

// Token identifies this holder.
func (l *Lock) Token() string { return l.token }

// Acquire takes the lock or fails with ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context) (*Lock, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: l.client, key: l.key, token: token}, nil
}

// Release drops the lock if this holder still owns it.
func (l *Lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}
