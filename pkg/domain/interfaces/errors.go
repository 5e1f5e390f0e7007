package interfaces

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = goerr.New("not found")
	// ErrAlreadyExists is returned when a unique key (message timestamp, photo source key,
	// store or brand name) is already taken
	ErrAlreadyExists = goerr.New("already exists")
	// ErrLockHeld is returned when another holder owns an unexpired sync lease
	ErrLockHeld = goerr.New("sync lock is held")
)
