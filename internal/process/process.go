// Package process stops the headless browser started for captures,
// including the helper processes it spawns.
package process

import "errors"

// ErrInvalidPID is returned for pids that would address the caller's own
// process group.
var ErrInvalidPID = errors.New("invalid pid")
