package game

import "math"

// Kill records one tank destroying another during a step.
type Kill struct {
	Killer *Tank
	Victim *Tank
}

// Rules is the default world rule set: movement, firing, bullet flight and
// hits. All index writes go through idx so the index never lags the world.
type Rules struct {
	Width, Height float64
	idx           Index
	respawns      int
}

func (r *Rules) Initialize(idx Index, width, height float64) {
	r.idx = idx
	r.Width = width
	r.Height = height
}

// SpawnLocation spreads spawns over the world with a golden-ratio sequence so
// consecutive players do not land on top of each other.
func (r *Rules) SpawnLocation(n int) (float64, float64) {
	const phi = 0.6180339887498949
	const phi2 = 0.7548776662466927
	fx := math.Mod(0.5+float64(n)*phi, 1)
	fy := math.Mod(0.5+float64(n)*phi2, 1)
	w := math.Max(r.Width-2*SpawnMargin, 0)
	h := math.Max(r.Height-2*SpawnMargin, 0)
	return SpawnMargin + fx*w, SpawnMargin + fy*h
}

// Step advances one tank and its bullets by one tick. Hits are found through
// the index, so every live tank must be indexed.
func (r *Rules) Step(t *Tank, inp Input) []Kill {
	r.move(t, inp)
	r.fire(t, inp)
	return r.advanceBullets(t)
}

func (r *Rules) move(t *Tank, inp Input) {
	ax := inp.Ax
	ay := inp.Ay
	mag := math.Hypot(ax, ay)
	if mag > Deadzone {
		nx := ax / mag
		ny := ay / mag
		t.VX += nx * AccelPerTick
		t.VY += ny * AccelPerTick
		t.Angle = math.Atan2(ny, nx)
	}

	t.VX /= DampingDiv
	t.VY /= DampingDiv

	speed := math.Hypot(t.VX, t.VY)
	if speed > MaxSpeed {
		scale := MaxSpeed / speed
		t.VX *= scale
		t.VY *= scale
	}

	t.X = clamp(t.X+t.VX, TankSize/2, r.Width-TankSize/2)
	t.Y = clamp(t.Y+t.VY, TankSize/2, r.Height-TankSize/2)
	t.Aim = inp.Aim
}

func (r *Rules) fire(t *Tank, inp Input) {
	if t.fireCooldown > 0 {
		t.fireCooldown--
	}
	if t.Ammo < t.AmmoCapacity {
		t.reload++
		if t.reload >= ReloadTicks {
			t.reload = 0
			t.Ammo++
		}
	} else {
		t.reload = 0
	}

	if !inp.Fire || t.fireCooldown > 0 || t.Ammo <= 0 {
		return
	}
	t.Ammo--
	t.fireCooldown = FireCooldownTicks

	muzzle := TankSize / 2
	b := &Bullet{
		ID:      NextID(),
		OwnerID: t.ID,
		X:       t.X + math.Cos(t.Aim)*muzzle,
		Y:       t.Y + math.Sin(t.Aim)*muzzle,
		VX:      math.Cos(t.Aim) * BulletSpeed,
		VY:      math.Sin(t.Aim) * BulletSpeed,
		TTL:     BulletTTLTicks,
	}
	t.Bullets = append(t.Bullets, b)
	indexBullet(r.idx, b)
}

func (r *Rules) advanceBullets(t *Tank) []Kill {
	var kills []Kill
	kept := t.Bullets[:0]
	for _, b := range t.Bullets {
		b.X += b.VX
		b.Y += b.VY
		b.TTL--
		if b.TTL <= 0 || b.X < 0 || b.Y < 0 || b.X > r.Width || b.Y > r.Height {
			r.idx.Remove(b.Indexed, b.ID)
			continue
		}
		reindexBullet(r.idx, b)

		victim := r.hit(b)
		if victim == nil {
			kept = append(kept, b)
			continue
		}
		r.idx.Remove(b.Indexed, b.ID)
		victim.Health -= BulletDamage
		if victim.Health <= 0 {
			t.Kills++
			r.respawn(victim)
			kills = append(kills, Kill{Killer: t, Victim: victim})
		}
	}
	clear(t.Bullets[len(kept):])
	t.Bullets = kept
	return kills
}

// hit returns the first indexed tank b overlaps, other than its owner.
func (r *Rules) hit(b *Bullet) *Tank {
	for e := range r.idx.Query(b.Indexed) {
		victim, ok := e.(*Tank)
		if !ok || victim.ID == b.OwnerID {
			continue
		}
		return victim
	}
	return nil
}

func (r *Rules) respawn(t *Tank) {
	r.respawns++
	t.X, t.Y = r.SpawnLocation(r.respawns)
	t.VX, t.VY = 0, 0
	t.Health = TankMaxHealth
	t.Ammo = t.AmmoCapacity
	t.reload = 0
	t.fireCooldown = 0
	ReindexTank(r.idx, t)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
