package stores

import "errors"

// Failure classes used inside the stores. Store methods never surface these
// to callers directly (they return success indicators and publish
// notifications); the sentinels let internal paths tell failure modes apart
// with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBlocked     = errors.New("account blocked")
	ErrTransientFetch     = errors.New("failed to fetch")
)
