package edit

import "github.com/ha1tch/linkage-toolkit/pkg/geom"

// pathBuffer is a fixed-capacity FIFO of points that drops the oldest
// entry once full.
type pathBuffer struct {
	pts   []geom.Point
	start int
	n     int
}

func newPathBuffer(capacity int) *pathBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &pathBuffer{pts: make([]geom.Point, capacity)}
}

func (b *pathBuffer) Push(p geom.Point) {
	if b.n < len(b.pts) {
		b.pts[(b.start+b.n)%len(b.pts)] = p
		b.n++
		return
	}
	b.pts[b.start] = p
	b.start = (b.start + 1) % len(b.pts)
}

func (b *pathBuffer) Len() int { return b.n }

// Points returns the contents oldest first.
func (b *pathBuffer) Points() []geom.Point {
	out := make([]geom.Point, b.n)
	for i := range out {
		out[i] = b.pts[(b.start+i)%len(b.pts)]
	}
	return out
}

// sample records the traced point. The driver calls it once per frame.
func (s *State) sample() {
	if s.kind != Trace {
		return
	}
	if p, ok := s.lk.Position(s.p0id); ok {
		s.trace.Push(p)
	}
}
