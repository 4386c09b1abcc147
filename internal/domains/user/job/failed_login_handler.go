package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/user"
	"library-backend/pkg/cache"
)

// Policy is the lockout policy shared by the handler and the guard.
type Policy struct {
	MaxFailedAttempts int
	AttemptWindow     time.Duration
	LockoutDuration   time.Duration
}

func AttemptKey(username string) string { return fmt.Sprintf("failed_login:%s", username) }
func LockKey(username string) string    { return fmt.Sprintf("account_locked:%s", username) }

// FailedLoginHandler consumes auth:process_failed_login tasks.
type FailedLoginHandler struct {
	cache  cache.Cache
	policy Policy
}

func NewFailedLoginHandler(c cache.Cache, policy Policy) *FailedLoginHandler {
	return &FailedLoginHandler{cache: c, policy: policy}
}

func (h *FailedLoginHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload user.FailedLoginPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal FailedLogin payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	return h.Process(ctx, payload)
}

// Process counts one failed attempt and locks the account once the
// threshold is reached inside the attempt window.
func (h *FailedLoginHandler) Process(ctx context.Context, payload user.FailedLoginPayload) error {
	attemptKey := AttemptKey(payload.Username)
	lockKey := LockKey(payload.Username)

	isLocked, err := h.cache.Exists(ctx, lockKey)
	if err != nil {
		return fmt.Errorf("check lock status: %w", err)
	}
	if isLocked {
		return nil
	}

	attempts, err := h.cache.Increment(ctx, attemptKey)
	if err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}

	// window starts at the first failure
	if attempts == 1 {
		if err := h.cache.Expire(ctx, attemptKey, h.policy.AttemptWindow); err != nil {
			log.Warn().Err(err).Str("key", attemptKey).Msg("Failed to set attempt window")
		}
	}

	log.Info().
		Str("username", payload.Username).
		Str("ip_address", payload.IPAddress).
		Int64("attempts", attempts).
		Msg("Failed login attempt counted")

	if attempts < int64(h.policy.MaxFailedAttempts) {
		return nil
	}

	lockout := user.Lockout{
		Attempts: attempts,
		LastIP:   payload.IPAddress,
		LockedAt: time.Now().UTC(),
	}
	if err := h.cache.Set(ctx, lockKey, lockout, h.policy.LockoutDuration); err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	if err := h.cache.Delete(ctx, attemptKey); err != nil {
		log.Warn().Err(err).Str("key", attemptKey).Msg("Failed to clear attempt counter")
	}

	log.Warn().
		Str("username", payload.Username).
		Dur("duration", h.policy.LockoutDuration).
		Msg("Account locked")

	return nil
}
