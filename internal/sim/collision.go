package sim

// ResolvePair runs the narrowphase test on a candidate pair and applies
// the response. Same-kind bullets exchange an elastic impulse; a
// player/bullet overlap (either order) flags the player as removed. All
// other kind combinations do not interact.
func ResolvePair(u, v *Unit) {
	dx := v.X - u.X
	dy := v.Y - u.Y
	rsum := u.Radius + v.Radius
	if dx*dx+dy*dy >= rsum*rsum {
		return
	}

	if u.Kind == v.Kind {
		if u.Kind == KindBullet {
			resolveElastic(u, v)
		}
		return
	}

	switch {
	case u.Kind == KindPlayer && v.Kind == KindBullet:
		u.Removed = true
	case u.Kind == KindBullet && v.Kind == KindPlayer:
		v.Removed = true
	}
}

// resolveElastic applies a 2D impulse along the line of centers that
// conserves momentum. The impulse is applied only when the pair is
// approaching (t > 0), so a pair still overlapping from a previously
// resolved collision separates without re-colliding.
func resolveElastic(u, v *Unit) {
	dx := v.X - u.X
	dy := v.Y - u.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		// Coincident centers: no line of centers to push along.
		return
	}

	rvx := v.VX - u.VX
	rvy := v.VY - u.VY
	massRatio := u.Mass / v.Mass

	t := -2 * (dx*rvx + dy*rvy) / ((1 + massRatio) * d2)
	if t <= 0 {
		return
	}

	u.VX -= t * dx
	u.VY -= t * dy
	v.VX += t * dx * massRatio
	v.VY += t * dy * massRatio
}
