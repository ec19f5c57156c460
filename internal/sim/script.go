package sim

import (
	"sort"

	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
)

// Script supplies pointer input for headless runs.
type Script interface {
	PointerAt(frame int) control.Pointer
}

// Keyframe pins the pointer state at a frame number.
type Keyframe struct {
	Frame int
	Pos   dynamo.Vec2
	Down  bool
}

// Keyframes is a pointer script. Between two keyframes the position is
// interpolated linearly and the button keeps the earlier keyframe's state.
type Keyframes []Keyframe

// NewKeyframes returns a copy of ks sorted by frame.
func NewKeyframes(ks []Keyframe) Keyframes {
	out := make(Keyframes, len(ks))
	copy(out, ks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out
}

func (k Keyframes) PointerAt(frame int) control.Pointer {
	if len(k) == 0 {
		return control.Pointer{}
	}
	i := sort.Search(len(k), func(i int) bool { return k[i].Frame > frame }) - 1
	if i < 0 {
		return control.Pointer{Pos: k[0].Pos}
	}
	cur := k[i]
	if i == len(k)-1 || k[i+1].Frame == cur.Frame {
		return control.Pointer{Pos: cur.Pos, Down: cur.Down}
	}

	next := k[i+1]
	t := float64(frame-cur.Frame) / float64(next.Frame-cur.Frame)
	pos := cur.Pos.Add(next.Pos.Sub(cur.Pos).Scale(t))
	return control.Pointer{Pos: pos, Down: cur.Down}
}
