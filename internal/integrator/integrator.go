package integrator

import "fmt"

// New returns the stepper for a configured integration method name.
// Unknown names are a configuration error.
func New(method string, law Law) (Stepper, error) {
	switch method {
	case "rk4":
		return NewRK4(law), nil
	case "euler":
		return NewEuler(law), nil
	case "verlet":
		return NewVerlet(law), nil
	default:
		return nil, fmt.Errorf("unknown integration method: %q", method)
	}
}
