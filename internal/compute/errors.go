package compute

import "errors"

var (
	// ErrDeviceUnavailable indicates the backend has no usable device,
	// either at selection time or after losing its context.
	ErrDeviceUnavailable = errors.New("compute: device unavailable")

	// ErrDeviceFault indicates a dispatch failed mid-flight. The canonical
	// particle buffer is untouched when this is returned.
	ErrDeviceFault = errors.New("compute: device fault")

	// ErrDeviceTimeout indicates the device did not signal completion
	// within the bounded poll budget. Treated as a fault by the caller.
	ErrDeviceTimeout = errors.New("compute: device completion timeout")
)
