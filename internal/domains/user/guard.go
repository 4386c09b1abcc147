package user

import "context"

// LoginGuard tracks failed logins and reports locked accounts.
type LoginGuard interface {
	IsLocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username, ipAddress string) error
}
