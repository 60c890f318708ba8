package core

import "time"

// FrameDuration is the nominal frame the physics constants are tuned for.
const FrameDuration = time.Second / 60

// MaxFrameDelta caps a single step so a stall cannot teleport the agent.
const MaxFrameDelta = 2.0

// ClampDelta restricts a frame delta to [0, MaxFrameDelta].
func ClampDelta(dt float64) float64 {
	return ClampF(dt, 0, MaxFrameDelta)
}

// FrameDelta converts wall-clock time into clamped 60Hz frame units.
func FrameDelta(elapsed time.Duration) float64 {
	return ClampDelta(float64(elapsed) / float64(FrameDuration))
}

// Integrate advances one axis with semi-implicit Euler: velocity first, then
// position using the new velocity.
func Integrate(pos, vel, acc, dt float64) (float64, float64) {
	vel += acc * dt
	pos += vel * dt
	return pos, vel
}

// Wrap moves x to the opposite edge once it leaves [-margin, width+margin].
func Wrap(x, width, margin float64) float64 {
	if x < -margin {
		return width + margin
	}
	if x > width+margin {
		return -margin
	}
	return x
}
