package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/user"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
)

// TaskEnqueuer is the slice of *asynq.Client the guard needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqGuard reads lock state from the cache and hands failures to the worker.
type AsynqGuard struct {
	cache  cache.Cache
	client TaskEnqueuer
}

var _ user.LoginGuard = (*AsynqGuard)(nil)

func NewAsynqGuard(c cache.Cache, client TaskEnqueuer) *AsynqGuard {
	return &AsynqGuard{cache: c, client: client}
}

func (g *AsynqGuard) IsLocked(ctx context.Context, username string) (bool, error) {
	var lockout user.Lockout
	found, err := g.cache.Get(ctx, LockKey(username), &lockout)
	if err != nil {
		return false, fmt.Errorf("read lock: %w", err)
	}
	if found {
		log.Ctx(ctx).Info().
			Str("username", username).
			Time("locked_at", lockout.LockedAt).
			Int64("attempts", lockout.Attempts).
			Msg("login refused for locked account")
	}
	return found, nil
}

func (g *AsynqGuard) RecordFailure(ctx context.Context, username, ipAddress string) error {
	data, err := json.Marshal(user.FailedLoginPayload{
		Username:  username,
		IPAddress: ipAddress,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal failed login payload: %w", err)
	}

	_, err = g.client.EnqueueContext(
		ctx,
		asynq.NewTask(shared.TypeProcessFailedLogin, data),
		asynq.Queue(shared.QueueAuth),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue failed login: %w", err)
	}
	return nil
}

// NoopGuard is used when redis is disabled: nothing is tracked, nobody is locked.
type NoopGuard struct{}

var _ user.LoginGuard = NoopGuard{}

func (NoopGuard) IsLocked(context.Context, string) (bool, error)      { return false, nil }
func (NoopGuard) RecordFailure(context.Context, string, string) error { return nil }
