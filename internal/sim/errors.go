package sim

import "errors"

var (
	// ErrTerminated is returned by any call after Terminate.
	ErrTerminated = errors.New("sim: controller terminated")
)
