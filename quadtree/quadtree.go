// Package quadtree is a region quadtree over axis-aligned boxes. It indexes
// payloads without owning them: callers insert on creation and remove on
// destruction, using the same box and key.
package quadtree

import "iter"

const (
	DefaultMaxEntries = 8
	DefaultMaxDepth   = 8
)

type entry[T any] struct {
	box     Box
	key     uint64
	payload T
}

type node[T any] struct {
	bounds   Box
	depth    int
	entries  []entry[T]
	children *[4]node[T]
}

// Tree indexes payloads by bounding box. Not safe for concurrent use; the
// room goroutine is its only caller.
type Tree[T any] struct {
	root       node[T]
	maxEntries int
	maxDepth   int
	size       int
}

type Option func(*config)

type config struct {
	maxEntries int
	maxDepth   int
}

// WithMaxEntries sets how many entries a leaf holds before it splits.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMaxDepth caps subdivision depth. Leaves at this depth grow unbounded.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxDepth = n
		}
	}
}

func New[T any](bounds Box, opts ...Option) *Tree[T] {
	c := config{maxEntries: DefaultMaxEntries, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&c)
	}
	return &Tree[T]{
		root:       node[T]{bounds: bounds},
		maxEntries: c.maxEntries,
		maxDepth:   c.maxDepth,
	}
}

// Len returns the number of indexed entries.
func (t *Tree[T]) Len() int { return t.size }

// Bounds returns the region covered by the root node.
func (t *Tree[T]) Bounds() Box { return t.root.bounds }

// Clear drops every entry and all subdivisions.
func (t *Tree[T]) Clear() {
	t.root = node[T]{bounds: t.root.bounds}
	t.size = 0
}

// Insert indexes payload under box. key must identify the entity uniquely;
// it is what Remove matches on.
func (t *Tree[T]) Insert(box Box, key uint64, payload T) {
	t.insert(&t.root, entry[T]{box: box, key: key, payload: payload})
	t.size++
}

func (t *Tree[T]) insert(n *node[T], e entry[T]) {
	for n.children != nil {
		child := n.childFor(e.box)
		if child == nil {
			break
		}
		n = child
	}
	n.entries = append(n.entries, e)
	if n.children == nil && len(n.entries) > t.maxEntries && n.depth < t.maxDepth {
		t.split(n)
	}
}

func (t *Tree[T]) split(n *node[T]) {
	quads := n.bounds.quadrants()
	n.children = &[4]node[T]{}
	for i := range quads {
		n.children[i] = node[T]{bounds: quads[i], depth: n.depth + 1}
	}
	kept := n.entries[:0]
	moved := make([]entry[T], 0, len(n.entries))
	for _, e := range n.entries {
		if n.childFor(e.box) == nil {
			kept = append(kept, e)
		} else {
			moved = append(moved, e)
		}
	}
	// Zero the tail so removed payloads are not retained.
	for i := len(kept); i < len(n.entries); i++ {
		n.entries[i] = entry[T]{}
	}
	n.entries = kept
	for _, e := range moved {
		t.insert(n, e)
	}
}

// childFor returns the first child that fully contains box, or nil when the
// box straddles a boundary. The order is fixed so Insert and Remove walk the
// same path.
func (n *node[T]) childFor(box Box) *node[T] {
	if n.children == nil {
		return nil
	}
	for i := range n.children {
		if n.children[i].bounds.Contains(box) {
			return &n.children[i]
		}
	}
	return nil
}

// Remove deletes the entry with the given key that was inserted under box.
// It reports false if no such entry exists.
func (t *Tree[T]) Remove(box Box, key uint64) bool {
	n := &t.root
	for {
		for i := range n.entries {
			if n.entries[i].key != key {
				continue
			}
			last := len(n.entries) - 1
			n.entries[i] = n.entries[last]
			n.entries[last] = entry[T]{}
			n.entries = n.entries[:last]
			t.size--
			return true
		}
		child := n.childFor(box)
		if child == nil {
			return false
		}
		n = child
	}
}

// Query yields every payload whose box intersects the query box. Subtrees
// outside the query region are skipped.
func (t *Tree[T]) Query(box Box) iter.Seq[T] {
	return func(yield func(T) bool) {
		t.root.query(box, yield)
	}
}

func (n *node[T]) query(box Box, yield func(T) bool) bool {
	for i := range n.entries {
		if n.entries[i].box.Intersects(box) {
			if !yield(n.entries[i].payload) {
				return false
			}
		}
	}
	if n.children == nil {
		return true
	}
	for i := range n.children {
		c := &n.children[i]
		if !c.bounds.Intersects(box) {
			continue
		}
		if !c.query(box, yield) {
			return false
		}
	}
	return true
}
