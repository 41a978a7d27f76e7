package linkage

import (
	"fmt"
	"sort"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
)

var demos = map[string]func(Options) *Linkage{
	"empty":   func(o Options) *Linkage { return New(o) },
	"fourbar": fourBar,
	"dyad":    dyad,
}

// DemoNames lists the built-in mechanisms.
func DemoNames() []string {
	names := make([]string, 0, len(demos))
	for n := range demos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Demo builds a named built-in mechanism.
func Demo(name string, opts Options) (*Linkage, error) {
	build, ok := demos[name]
	if !ok {
		return nil, fmt.Errorf("unknown demo %q (have %v)", name, DemoNames())
	}
	l := build(opts)
	if !l.Recompute() {
		return nil, fmt.Errorf("demo %q does not solve", name)
	}
	return l, nil
}

// fourBar is a crank-rocker with a coupler point.
//
//	r0 crank centre, e0 crank tip, g1 rocker pivot, p1 rocker tip,
//	p2 coupler point rigid with e0-p1.
func fourBar(o Options) *Linkage {
	l := New(o)
	l.nextID = 2
	l.SetRotary("r0", "ref0", "e0", geom.Pt(10, 14), 4, 1)
	l.SetGround("g1", geom.Pt(22, 14))
	l.SetPoint("p1", geom.Pt(19, 7))
	l.SetPoint("p2", geom.Pt(16, 2))
	mustConnect(l, "e0", "p1")
	mustConnect(l, "g1", "p1")
	mustConnect(l, "e0", "p2")
	mustConnect(l, "p1", "p2")
	return l
}

// dyad hangs a two-bar chain from a crank and a ground pivot.
func dyad(o Options) *Linkage {
	l := New(o)
	l.nextID = 2
	l.SetRotary("r0", "ref0", "e0", geom.Pt(12, 12), 3, 1.5)
	l.SetGround("g1", geom.Pt(24, 6))
	l.SetPoint("p1", geom.Pt(20, 16))
	l.SetPoint("p2", geom.Pt(30, 15))
	mustConnect(l, "e0", "p1")
	mustConnect(l, "g1", "p1")
	mustConnect(l, "p1", "p2")
	mustConnect(l, "g1", "p2")
	return l
}

func mustConnect(l *Linkage, a, b string) {
	if err := l.Connect(a, b); err != nil {
		panic(err)
	}
}
