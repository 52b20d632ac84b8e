// Package scoreboard ranks tanks by kill count.
package scoreboard

import (
	"container/heap"

	"tankarena/game"
	"tankarena/protocol"
)

type ranked struct {
	kills int
	order int
	name  string
}

// minHeap keeps the weakest of the current top K at the root. Among equal
// kill counts the later input ranks lower, which keeps ties stable.
type minHeap []ranked

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].kills != h[j].kills {
		return h[i].kills < h[j].kills
	}
	return h[i].order > h[j].order
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(ranked)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Top returns the limit highest-kill tanks as value entries, best first.
// Nil tanks are skipped.
func Top(tanks []*game.Tank, limit int) []protocol.ScoreEntry {
	k := min(len(tanks), limit)
	if k <= 0 {
		return []protocol.ScoreEntry{}
	}

	h := make(minHeap, 0, k)
	for i, t := range tanks {
		if t == nil {
			continue
		}
		r := ranked{kills: t.Kills, order: i, name: t.Name}
		if h.Len() < k {
			heap.Push(&h, r)
			continue
		}
		if r.kills > h[0].kills {
			h[0] = r
			heap.Fix(&h, 0)
		}
	}

	out := make([]protocol.ScoreEntry, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		r := heap.Pop(&h).(ranked)
		out[i] = protocol.ScoreEntry{Name: r.name, Kills: r.kills}
	}
	return out
}
