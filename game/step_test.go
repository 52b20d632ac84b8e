package game

import (
	"testing"

	"tankarena/quadtree"
)

func newRules() (*Rules, *quadtree.Tree[Entity]) {
	idx := quadtree.New[Entity](quadtree.Box{MaxX: 2000, MaxY: 2000})
	r := &Rules{}
	r.Initialize(idx, 2000, 2000)
	return r, idx
}

func countIndexed(idx *quadtree.Tree[Entity]) (tanks, bullets int) {
	for e := range idx.Query(idx.Bounds()) {
		switch e.Kind() {
		case KindTank:
			tanks++
		case KindBullet:
			bullets++
		}
	}
	return tanks, bullets
}

func TestStepMovesTank(t *testing.T) {
	r, idx := newRules()
	tank := NewTank("t", 500, 500, 10)
	IndexTank(idx, tank)
	inp := Input{Ax: 1, Ay: 0}

	r.Step(tank, inp)
	x1 := tank.X
	if x1 <= 500 {
		t.Fatalf("expected x to increase after 1 step, got %f", x1)
	}

	for i := 0; i < 4; i++ {
		r.Step(tank, inp)
	}
	if tank.X <= x1 {
		t.Fatalf("expected x to keep increasing: x1=%f x2=%f", x1, tank.X)
	}
}

func TestStepClampsToWorld(t *testing.T) {
	r, _ := newRules()
	tank := NewTank("t", 1990, 10, 10)
	for i := 0; i < 50; i++ {
		r.Step(tank, Input{Ax: 1, Ay: -1})
	}
	if tank.X > 2000-TankSize/2 || tank.Y < TankSize/2 {
		t.Fatalf("tank escaped world: (%f, %f)", tank.X, tank.Y)
	}
}

func TestFireSpendsAmmoAndIndexesBullet(t *testing.T) {
	r, idx := newRules()
	tank := NewTank("t", 500, 500, 3)
	IndexTank(idx, tank)

	r.Step(tank, Input{Fire: true})
	if tank.Ammo != 2 {
		t.Fatalf("ammo = %d, want 2", tank.Ammo)
	}
	if len(tank.Bullets) != 1 {
		t.Fatalf("bullets = %d, want 1", len(tank.Bullets))
	}
	if _, bullets := countIndexed(idx); bullets != 1 {
		t.Fatalf("indexed bullets = %d, want 1", bullets)
	}

	// cooldown blocks the next shot
	r.Step(tank, Input{Fire: true})
	if tank.Ammo != 2 {
		t.Fatalf("ammo after cooldown shot = %d, want 2", tank.Ammo)
	}
}

func TestEmptyTankCannotFire(t *testing.T) {
	r, idx := newRules()
	tank := NewTank("t", 500, 500, 0)
	IndexTank(idx, tank)
	r.Step(tank, Input{Fire: true})
	if len(tank.Bullets) != 0 {
		t.Fatalf("expected no bullets with zero capacity")
	}
}

func TestBulletExpiresAndLeavesIndex(t *testing.T) {
	r, idx := newRules()
	tank := NewTank("t", 1000, 1000, 5)
	IndexTank(idx, tank)
	r.Step(tank, Input{Fire: true})

	for i := 0; i < BulletTTLTicks+1; i++ {
		r.Step(tank, Input{})
	}
	if len(tank.Bullets) != 0 {
		t.Fatalf("bullets = %d, want 0 after ttl", len(tank.Bullets))
	}
	if _, bullets := countIndexed(idx); bullets != 0 {
		t.Fatalf("indexed bullets = %d, want 0", bullets)
	}
}

func TestBulletKillsAndCreditsShooter(t *testing.T) {
	r, idx := newRules()
	shooter := NewTank("a", 500, 500, 10)
	victim := NewTank("b", 560, 500, 10)
	victim.Health = BulletDamage
	IndexTank(idx, shooter)
	IndexTank(idx, victim)

	var kills []Kill
	for i := 0; i < 10 && len(kills) == 0; i++ {
		kills = append(kills, r.Step(shooter, Input{Fire: i == 0, Aim: 0})...)
	}
	if len(kills) != 1 || kills[0].Victim != victim || kills[0].Killer != shooter {
		t.Fatalf("expected one kill of victim, got %+v", kills)
	}
	if shooter.Kills != 1 {
		t.Fatalf("kills = %d, want 1", shooter.Kills)
	}
	if victim.Health != TankMaxHealth {
		t.Fatalf("victim should respawn at full health, got %d", victim.Health)
	}
	if victim.Indexed != victim.Bounds() {
		t.Fatalf("respawned victim not reindexed")
	}
	if _, bullets := countIndexed(idx); bullets != 0 {
		t.Fatalf("bullet should be consumed by the hit")
	}
}

func TestUnindexTankSweepsBullets(t *testing.T) {
	r, idx := newRules()
	tank := NewTank("t", 500, 500, 10)
	IndexTank(idx, tank)
	for i := 0; i < 3*FireCooldownTicks; i++ {
		r.Step(tank, Input{Fire: true, Aim: 1.5})
	}
	if len(tank.Bullets) < 2 {
		t.Fatalf("expected several bullets in flight, got %d", len(tank.Bullets))
	}

	UnindexTank(idx, tank)
	if idx.Len() != 0 {
		t.Fatalf("index holds %d entries after unindex, want 0", idx.Len())
	}
	UnindexTank(idx, tank)
}

func TestSpawnLocationsStayInsideMargins(t *testing.T) {
	r, _ := newRules()
	seen := map[[2]float64]bool{}
	for n := 0; n < 20; n++ {
		x, y := r.SpawnLocation(n)
		if x < SpawnMargin || y < SpawnMargin || x > 2000-SpawnMargin || y > 2000-SpawnMargin {
			t.Fatalf("spawn %d out of margins: (%f, %f)", n, x, y)
		}
		seen[[2]float64{x, y}] = true
	}
	if len(seen) != 20 {
		t.Fatalf("expected distinct spawns, got %d", len(seen))
	}
}

func TestRespawnsUseSuccessiveSpawnPoints(t *testing.T) {
	r, idx := newRules()
	shooter := NewTank("a", 500, 500, 10)
	IndexTank(idx, shooter)

	var spots [][2]float64
	for n := 0; n < 2; n++ {
		victim := NewTank("b", shooter.X+60, shooter.Y, 10)
		victim.Health = BulletDamage
		IndexTank(idx, victim)
		for i := 0; i < 2*FireCooldownTicks && victim.Health != TankMaxHealth; i++ {
			r.Step(shooter, Input{Fire: true, Aim: 0})
		}
		if victim.Health != TankMaxHealth {
			t.Fatalf("round %d: victim not killed", n)
		}
		spots = append(spots, [2]float64{victim.X, victim.Y})
		UnindexTank(idx, victim)
	}
	if spots[0] == spots[1] {
		t.Fatalf("two respawns landed on the same point %v", spots[0])
	}
}
