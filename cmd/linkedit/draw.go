package main

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/linkage-toolkit/pkg/edit"
	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
	"github.com/ha1tch/linkage-toolkit/pkg/render"
)

var (
	styleDefault    = tcell.StyleDefault
	styleBar        = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const (
	glyphBar    = '·'
	glyphPoint  = '●'
	glyphGround = '▲'
	glyphRotary = '◎'
	glyphMarker = '◆'
	glyphSample = '•'
)

// nowMillis is the flash clock.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	cr := &cellRenderer{screen: ed.screen, view: ed.view, w: w, h: h - 2}
	ed.driver.Draw(cr)

	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	st := ed.driver.State()
	info := fmt.Sprintf("%s  %s", ed.cfg.Demo, st)
	if st.Kind() == edit.Optimizing {
		info += fmt.Sprintf("  steps %d", st.Steps())
	}
	ed.drawString(1, y, truncate(info, w/2), styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		case MsgWarning:
			style = styleMsgWarning
		}
		if shouldFlashForType(ed.messageType) && ed.messageFlashStart > 0 {
			if shouldBeInverted(nowMillis() - ed.messageFlashStart) {
				style = style.Reverse(true)
			}
		}
		ed.drawString(w-len([]rune(ed.message))-2, y, ed.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, truncate(st.Hint()+"  ^E export  q quit", w-2), styleHelp)
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}

// shouldBeInverted gives the flash pattern: normal, inverted, normal,
// inverted in 125ms phases, then normal.
func shouldBeInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= 500 {
		return false
	}
	phaseNum := elapsed / 125
	return phaseNum == 1 || phaseNum == 3
}

func shouldFlashForType(msgType MessageType) bool {
	switch msgType {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	default:
		return false
	}
}

// cellRenderer draws on the terminal, clipped to w x h cells.
type cellRenderer struct {
	screen tcell.Screen
	view   view
	w, h   int
}

var _ render.Renderer = (*cellRenderer)(nil)

func styleFor(c color.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.FromImageColor(c))
}

func (c *cellRenderer) DrawLinkage(positions map[string]geom.Point, topo linkage.Topology) {
	for _, e := range topo.Edges() {
		c.line(positions[e[0]], positions[e[1]], glyphBar, styleBar)
	}
	for _, id := range topo.Points {
		glyph := glyphPoint
		switch {
		case topo.IsRotary(id):
			glyph = glyphRotary
		case topo.IsGround(id):
			glyph = glyphGround
		}
		c.set(positions[id], glyph, styleFor(render.PointColor(id, topo)))
	}
}

func (c *cellRenderer) DrawLines(pts []geom.Point, opts render.LineOptions) {
	st := styleBar
	if opts.LineColor != nil {
		st = styleFor(opts.LineColor)
	}
	for i := 1; i < len(pts); i++ {
		c.line(pts[i-1], pts[i], glyphBar, st)
	}
	if len(pts) == 1 {
		c.set(pts[0], glyphBar, st)
	}
	if opts.DrawPoints {
		ps := st
		if opts.PointColor != nil {
			ps = styleFor(opts.PointColor)
		}
		for _, p := range pts {
			c.set(p, glyphSample, ps)
		}
	}
}

func (c *cellRenderer) DrawPoint(p geom.Point, opts render.PointOptions) {
	st := styleFor(render.ColorSelected)
	if opts.Color != nil {
		st = styleFor(opts.Color)
	}
	c.set(p, glyphMarker, st)
}

func (c *cellRenderer) set(p geom.Point, r rune, st tcell.Style) {
	x, y := c.view.toCell(p)
	c.cell(x, y, r, st)
}

func (c *cellRenderer) cell(x, y int, r rune, st tcell.Style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.screen.SetContent(x, y, r, nil, st)
}

// line rasterises a segment between cell centres.
func (c *cellRenderer) line(a, b geom.Point, r rune, st tcell.Style) {
	x0, y0 := c.view.toCell(a)
	x1, y1 := c.view.toCell(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	// Skip segments reaching far outside the screen.
	if dx > 4*c.w || -dy > 4*c.h {
		return
	}
	e := dx + dy
	for {
		c.cell(x0, y0, r, st)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
