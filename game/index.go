package game

// IndexTank inserts t under its current bounds. It is a no-op for a tank
// that is already indexed.
func IndexTank(idx Index, t *Tank) {
	if t.indexed {
		return
	}
	t.Indexed = t.Bounds()
	idx.Insert(t.Indexed, t.ID, t)
	t.indexed = true
}

// ReindexTank moves t's entry to its current bounds.
func ReindexTank(idx Index, t *Tank) {
	if !t.indexed {
		return
	}
	b := t.Bounds()
	if b == t.Indexed {
		return
	}
	idx.Remove(t.Indexed, t.ID)
	t.Indexed = b
	idx.Insert(b, t.ID, t)
}

// UnindexTank removes every bullet t owns and then t itself. Safe to call on
// a tank that was never indexed.
func UnindexTank(idx Index, t *Tank) {
	for _, b := range t.Bullets {
		idx.Remove(b.Indexed, b.ID)
	}
	clear(t.Bullets)
	t.Bullets = t.Bullets[:0]
	if t.indexed {
		idx.Remove(t.Indexed, t.ID)
		t.indexed = false
	}
}

func indexBullet(idx Index, b *Bullet) {
	b.Indexed = b.Bounds()
	idx.Insert(b.Indexed, b.ID, b)
}

func reindexBullet(idx Index, b *Bullet) {
	nb := b.Bounds()
	if nb == b.Indexed {
		return
	}
	idx.Remove(b.Indexed, b.ID)
	b.Indexed = nb
	idx.Insert(nb, b.ID, b)
}
