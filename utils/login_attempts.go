// utils/login_attempts.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTooManyAttempts is returned once a username exceeds the failed login
// budget for the current window.
var ErrTooManyAttempts = errors.New("too many failed login attempts")

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

// RecordFailedLogin counts a failed login for the username. Returns
// ErrTooManyAttempts when the budget is exhausted. A nil client disables
// throttling (redis is optional in dev).
func RecordFailedLogin(rdb *redis.Client, username string) error {
	if rdb == nil {
		return nil
	}

	key := "login_attempts:" + username
	attempts, err := rdb.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	if attempts == 1 {
		rdb.Expire(context.Background(), key, loginAttemptWindow)
	}

	if attempts > maxLoginAttempts {
		return ErrTooManyAttempts
	}

	return nil
}

// IsLoginBlocked reports whether the username has already burned through its
// attempt budget, without consuming another attempt.
func IsLoginBlocked(rdb *redis.Client, username string) bool {
	if rdb == nil {
		return false
	}

	key := "login_attempts:" + username
	attempts, err := rdb.Get(context.Background(), key).Int64()
	if err != nil {
		return false
	}
	return attempts > maxLoginAttempts
}

// ClearLoginAttempts resets the counter after a successful login.
func ClearLoginAttempts(rdb *redis.Client, username string) {
	if rdb == nil {
		return
	}
	rdb.Del(context.Background(), "login_attempts:"+username)
}
