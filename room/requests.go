package room

import (
	"context"

	"tankarena/protocol"
)

// Done is closed once Run has returned after Stop.
func (r *Room) Done() <-chan struct{} {
	return r.stopped
}

// Post hands cmd to the room goroutine. It reports false if the room has
// stopped or ctx ended first.
func (r *Room) Post(ctx context.Context, cmd any) bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.quit:
		return false
	case <-ctx.Done():
		return false
	}
}

func request[T any](ctx context.Context, r *Room, build func(chan<- T) any) (T, error) {
	var zero T
	reply := make(chan T, 1)
	if !r.Post(ctx, build(reply)) {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, ErrStopped
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.quit:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Scoreboard returns the cached scoreboard.
func (r *Room) Scoreboard(ctx context.Context) ([]protocol.ScoreEntry, error) {
	return request(ctx, r, func(c chan<- []protocol.ScoreEntry) any { return ScoreboardRequest{Reply: c} })
}

func (r *Room) Stats(ctx context.Context) (Stats, error) {
	return request(ctx, r, func(c chan<- Stats) any { return StatsRequest{Reply: c} })
}
