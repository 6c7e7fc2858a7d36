package reddit

import "errors"

var (
	// ErrInvalidInput indicates the argument contained no recognizable username
	ErrInvalidInput = errors.New("not a reddit profile URL or username")

	// ErrUserNotFound indicates the account does not exist or is suspended
	ErrUserNotFound = errors.New("reddit user not found or suspended")

	// ErrRateLimited indicates Reddit throttled the request (HTTP 429).
	// It is propagated, never retried: the user re-invokes the tool.
	ErrRateLimited = errors.New("reddit rate limit exceeded")
)
