package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type Welcome struct {
	Player PlayerInfo `json:"player"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

type Ping struct{}

type Dead struct {
	Killer string `json:"killer"`
}

// Object is one visible world object in a state snapshot.
type Object struct {
	_msgpack struct{} `msgpack:",as_array"`

	Kind   string  `json:"kind"`
	ID     uint64  `json:"id"`
	Owner  uint64  `json:"owner,omitempty"`
	Name   string  `json:"name,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle,omitempty"`
	Aim    float64 `json:"aim,omitempty"`
	Health int     `json:"health,omitempty"`
}

type ScoreEntry struct {
	_msgpack struct{} `msgpack:",as_array"`

	Name  string `json:"name"`
	Kills int    `json:"kills"`
}

// Snapshot is the per-client world-snapshot. The client draws layers in the
// order keys arrive, so the wire order is fixed by snapshotLayout rather than
// by struct declaration order.
type Snapshot struct {
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Objects      []Object     `json:"objects"`
	AmmoCapacity int          `json:"ammoCapacity"`
	Ammo         int          `json:"ammo"`
	Scoreboard   []ScoreEntry `json:"scoreboard"`
}

// viewpoint, visible objects, ammo, scoreboard
var snapshotLayout = [...]string{"x", "y", "objects", "ammoCapacity", "ammo", "scoreboard"}

func (s Snapshot) fields() [len(snapshotLayout)]any {
	objects := s.Objects
	if objects == nil {
		objects = []Object{}
	}
	board := s.Scoreboard
	if board == nil {
		board = []ScoreEntry{}
	}
	return [len(snapshotLayout)]any{s.X, s.Y, objects, s.AmmoCapacity, s.Ammo, board}
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	values := s.fields()
	for i, key := range snapshotLayout {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(key)
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(values[i])
		if err != nil {
			return nil, fmt.Errorf("snapshot field %s: %w", key, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeMsgpack writes the snapshot as a positional array in layout order.
func (s Snapshot) EncodeMsgpack(enc *msgpack.Encoder) error {
	values := s.fields()
	if err := enc.EncodeArrayLen(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("snapshot field %s: %w", snapshotLayout[i], err)
		}
	}
	return nil
}

func (s *Snapshot) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != len(snapshotLayout) {
		return fmt.Errorf("%w: snapshot has %d fields, want %d", ErrLayout, n, len(snapshotLayout))
	}
	targets := [len(snapshotLayout)]any{&s.X, &s.Y, &s.Objects, &s.AmmoCapacity, &s.Ammo, &s.Scoreboard}
	for i, dst := range targets {
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("snapshot field %s: %w", snapshotLayout[i], err)
		}
	}
	return nil
}
