// Package compute provides the execution backends that advance the packed
// particle buffer by one timestep, and the Sync layer that moves state
// between the canonical CPU buffer and a device.
//
// Both backends integrate the same equations. The CPU backend shares the
// stepper implementation directly; the OpenGL backend mirrors it in a
// compute shader over the same 32-byte record layout. Sync guarantees that
// a failed dispatch never touches the canonical buffer: the upload is a
// projection, and results are only applied after finite-validation.
package compute
