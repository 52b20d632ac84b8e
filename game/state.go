package game

import (
	"iter"
	"sync/atomic"

	"tankarena/quadtree"
)

// Internal truth authoritative world objects

type Kind uint8

const (
	KindTank Kind = iota + 1
	KindBullet
)

func (k Kind) String() string {
	switch k {
	case KindTank:
		return "tank"
	case KindBullet:
		return "bullet"
	default:
		return "unknown"
	}
}

// Entity is anything stored in the spatial index.
type Entity interface {
	EntityID() uint64
	Kind() Kind
	Bounds() quadtree.Box
}

// Index is the slice of the spatial index the rules need. *quadtree.Tree[Entity]
// satisfies it.
type Index interface {
	Insert(box quadtree.Box, key uint64, payload Entity)
	Remove(box quadtree.Box, key uint64) bool
	Query(box quadtree.Box) iter.Seq[Entity]
}

var entityIDs atomic.Uint64

// NextID hands out process-unique entity ids.
func NextID() uint64 {
	return entityIDs.Add(1)
}

type Input struct {
	Ax, Ay float64 // -1..1 movement
	Aim    float64 // turret angle, radians
	Fire   bool
}

type Tank struct {
	ID   uint64
	Name string

	X, Y, VX, VY float64
	Angle        float64
	Aim          float64

	Health       int
	Ammo         int
	AmmoCapacity int
	Kills        int

	Bullets []*Bullet

	// Indexed is the box this tank is currently stored under, if any.
	Indexed quadtree.Box
	indexed bool

	fireCooldown int
	reload       int
}

func NewTank(name string, x, y float64, ammoCapacity int) *Tank {
	return &Tank{
		ID:           NextID(),
		Name:         name,
		X:            x,
		Y:            y,
		Health:       TankMaxHealth,
		Ammo:         ammoCapacity,
		AmmoCapacity: ammoCapacity,
	}
}

func (t *Tank) EntityID() uint64 { return t.ID }
func (t *Tank) Kind() Kind       { return KindTank }
func (t *Tank) Bounds() quadtree.Box {
	return quadtree.Centered(t.X, t.Y, TankSize, TankSize)
}

// IsIndexed reports whether the tank currently has an index entry.
func (t *Tank) IsIndexed() bool { return t.indexed }

type Bullet struct {
	ID uint64
	// OwnerID names the firing tank. Lookup only; the tank's Bullets slice is
	// the owning side.
	OwnerID uint64

	X, Y, VX, VY float64
	TTL          int

	Indexed quadtree.Box
}

func (b *Bullet) EntityID() uint64 { return b.ID }
func (b *Bullet) Kind() Kind       { return KindBullet }
func (b *Bullet) Bounds() quadtree.Box {
	return quadtree.Centered(b.X, b.Y, BulletSize, BulletSize)
}
