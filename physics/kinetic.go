package physics

// Body is a point mass in canvas units
type Body struct {
	X, Y   float64
	VelX   float64
	VelY   float64
	AccelX float64
	AccelY float64
}

// Integrate performs semi-implicit Euler: v = v + a*dt; p = p + v*dt
func Integrate(b *Body, dt float64) (x, y float64) {
	b.VelX += b.AccelX * dt
	b.VelY += b.AccelY * dt
	b.X += b.VelX * dt
	b.Y += b.VelY * dt
	return b.X, b.Y
}

// Stop zeroes velocity and acceleration
func Stop(b *Body) {
	b.VelX, b.VelY = 0, 0
	b.AccelX, b.AccelY = 0, 0
}

// Rect is an inclusive clamp rectangle
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// ClampBody pins the body inside r and kills velocity on the clamped axis
// Returns true if any axis was clamped
func ClampBody(b *Body, r Rect) bool {
	clamped := false
	if b.X < r.MinX {
		b.X, b.VelX, clamped = r.MinX, 0, true
	} else if b.X > r.MaxX {
		b.X, b.VelX, clamped = r.MaxX, 0, true
	}
	if b.Y < r.MinY {
		b.Y, b.VelY, clamped = r.MinY, 0, true
	} else if b.Y > r.MaxY {
		b.Y, b.VelY, clamped = r.MaxY, 0, true
	}
	return clamped
}
