package integrator

import (
	"testing"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

func benchStepper(b *testing.B, s Stepper) {
	bh := physics.NewBlackHole(1.989e30, vecmath.Zero())
	p := circularOrbitParticle(bh, 5) // relativistic terms active

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st, err := s.Step(&p, bh, 1e-6)
		if err != nil {
			b.Fatal(err)
		}
		p.Position, p.Velocity = st.Position, st.Velocity
	}
}

func BenchmarkEuler(b *testing.B)  { benchStepper(b, NewEuler(NewLaw(0.5))) }
func BenchmarkRK4(b *testing.B)    { benchStepper(b, NewRK4(NewLaw(0.5))) }
func BenchmarkVerlet(b *testing.B) { benchStepper(b, NewVerlet(NewLaw(0.5))) }
