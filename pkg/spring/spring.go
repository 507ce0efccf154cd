// Package spring implements a damped second-order integrator for one scalar
// value. Entities use one Spring per animated property (x, y, scale,
// rotation); the render loop advances them with a caller-clamped dt.
package spring

import "math"

// Config holds the physical constants for one property. Different
// properties use different tuples so position glides while scale snaps.
type Config struct {
	Stiffness float64
	Damping   float64
	Mass      float64
}

var (
	Position = Config{Stiffness: 170, Damping: 26, Mass: 1}
	Scale    = Config{Stiffness: 210, Damping: 20, Mass: 1}
	Rotation = Config{Stiffness: 120, Damping: 14, Mass: 1}
)

// Below this distance and speed the spring snaps to target, preventing
// perpetual micro-jitter.
const settleEpsilon = 0.001

type Spring struct {
	Current  float64
	Target   float64
	Velocity float64

	cfg Config
}

func New(cfg Config, v float64) *Spring {
	return &Spring{Current: v, Target: v, cfg: cfg}
}

// Set snaps to v with no transition.
func (s *Spring) Set(v float64) {
	s.Current = v
	s.Target = v
	s.Velocity = 0
}

func (s *Spring) SetTarget(v float64) {
	s.Target = v
}

// Nudge injects a velocity impulse. Retargeting uses this to make a type
// change visibly pop without a positional discontinuity.
func (s *Spring) Nudge(dv float64) {
	s.Velocity += dv
}

// Update advances the simulation by dt seconds using semi-implicit Euler.
// dt must be pre-clamped by the caller; the spring does not clamp itself.
func (s *Spring) Update(dt float64) {
	force := -s.cfg.Stiffness*(s.Current-s.Target) - s.cfg.Damping*s.Velocity
	accel := force / s.cfg.Mass
	s.Velocity += accel * dt
	s.Current += s.Velocity * dt

	if math.Abs(s.Current-s.Target) < settleEpsilon && math.Abs(s.Velocity) < settleEpsilon {
		s.Current = s.Target
		s.Velocity = 0
	}
}

// Settled reports whether the spring has reached its target and stopped.
func (s *Spring) Settled() bool {
	return s.Current == s.Target && s.Velocity == 0
}
