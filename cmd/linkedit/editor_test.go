package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ha1tch/linkage-toolkit/pkg/config"
	"github.com/ha1tch/linkage-toolkit/pkg/edit"
	"github.com/ha1tch/linkage-toolkit/pkg/geom"
)

func newTestEditor(t *testing.T) (*Editor, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 30)

	ed, err := NewEditor(screen, config.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ed.driver.Close()
		screen.Fini()
	})
	return ed, screen
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func click(ed *Editor, p geom.Point) {
	x, y := ed.view.toCell(p)
	ed.handleMouse(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	ed.handleMouse(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func position(t *testing.T, ed *Editor, id string) geom.Point {
	t.Helper()
	p, ok := ed.driver.Linkage().Position(id)
	require.True(t, ok, "no point %s", id)
	return p
}

func rowText(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestEditorStartsRunning(t *testing.T) {
	ed, _ := newTestEditor(t)
	assert.Equal(t, edit.Unpaused, ed.driver.State().Kind())
	assert.Equal(t, "Loaded fourbar", ed.message)

	assert.False(t, ed.handleKey(runeKey(' ')))
	assert.Equal(t, edit.Idle, ed.driver.State().Kind())
	assert.Empty(t, ed.message)
}

func TestEditorSelectAndDelete(t *testing.T) {
	ed, _ := newTestEditor(t)
	ed.handleKey(runeKey(' '))

	click(ed, position(t, ed, "p2"))
	st := ed.driver.State()
	require.Equal(t, edit.PointSelected, st.Kind())
	assert.Equal(t, "p2", st.P0())

	ed.handleKey(runeKey('d'))
	assert.Equal(t, edit.Idle, ed.driver.State().Kind())
	_, ok := ed.driver.Linkage().Position("p2")
	assert.False(t, ok, "p2 should be gone")
}

func TestEditorRefusedDeleteFlashes(t *testing.T) {
	ed, _ := newTestEditor(t)
	ed.handleKey(runeKey(' '))

	click(ed, position(t, ed, "r0"))
	before := ed.driver.State()
	require.Equal(t, edit.RotarySelected, before.Kind())

	ed.handleKey(runeKey('d'))
	assert.Same(t, before, ed.driver.State())
	assert.Equal(t, "Cannot remove r0", ed.message)
	assert.Equal(t, MsgError, ed.messageType)
}

func TestEditorHoldR(t *testing.T) {
	ed, _ := newTestEditor(t)
	ed.handleKey(runeKey(' '))
	rotaries := len(ed.driver.Linkage().Topology().Rotaries)

	ed.handleKey(runeKey('r'))
	assert.Equal(t, edit.PlacingRotary, ed.driver.State().Kind())
	assert.True(t, ed.holdingR)

	// second press releases without placing
	ed.handleKey(runeKey('R'))
	assert.Equal(t, edit.Idle, ed.driver.State().Kind())
	assert.False(t, ed.holdingR)

	ed.handleKey(runeKey('r'))
	click(ed, geom.Pt(30, 20))
	assert.Equal(t, edit.Idle, ed.driver.State().Kind())
	assert.False(t, ed.holdingR)
	assert.Len(t, ed.driver.Linkage().Topology().Rotaries, rotaries+1)
}

func TestEditorEscapeDropsHold(t *testing.T) {
	ed, _ := newTestEditor(t)
	ed.handleKey(runeKey(' '))
	ed.handleKey(runeKey('r'))
	require.True(t, ed.holdingR)

	ed.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.False(t, ed.holdingR)
	assert.Equal(t, edit.Idle, ed.driver.State().Kind())
}

func TestEditorQuitKeys(t *testing.T) {
	ed, _ := newTestEditor(t)
	assert.True(t, ed.handleKey(runeKey('q')))
	assert.True(t, ed.handleKey(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
	assert.False(t, ed.handleKey(runeKey('w')))
}

func TestEditorPan(t *testing.T) {
	ed, _ := newTestEditor(t)
	p := geom.Pt(3, 5)
	x0, y0 := ed.view.toCell(p)

	ed.handleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	ed.handleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	x1, y1 := ed.view.toCell(p)
	assert.Equal(t, x0+4, x1)
	assert.Equal(t, y0+2, y1)
	assert.Equal(t, p, ed.view.toCanvas(x1, y1))
}

func TestEditorDraw(t *testing.T) {
	ed, screen := newTestEditor(t)
	ed.handleKey(runeKey(' '))
	ed.draw()

	glyphAt := func(id string) rune {
		x, y := ed.view.toCell(position(t, ed, id))
		r, _, _, _ := screen.GetContent(x, y)
		return r
	}
	assert.Equal(t, glyphPoint, glyphAt("p2"))
	assert.Equal(t, glyphGround, glyphAt("g1"))
	assert.Equal(t, glyphRotary, glyphAt("r0"))

	_, h := screen.Size()
	assert.Contains(t, rowText(screen, h-1), "fourbar  Idle")
	assert.Contains(t, rowText(screen, h-2), "q quit")
}

func TestEditorFrame(t *testing.T) {
	ed, _ := newTestEditor(t)
	before := position(t, ed, "e0")

	t0 := time.Now()
	ed.lastFrame = t0
	ed.frame(t0.Add(-time.Second))
	assert.Equal(t, before, position(t, ed, "e0"), "time going backwards must not step")

	ed.lastFrame = t0
	ed.frame(t0.Add(100 * time.Millisecond))
	assert.NotEqual(t, before, position(t, ed, "e0"))
}

func TestEditorWritePNG(t *testing.T) {
	ed, _ := newTestEditor(t)
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, ed.writePNG(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	assert.Equal(t, cfg.Render.Width, img.Bounds().Dx())
	assert.Equal(t, cfg.Render.Height, img.Bounds().Dy())
}

func TestEditorRunStopsOnCancel(t *testing.T) {
	ed, _ := newTestEditor(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ed.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWriteConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkedit.yaml")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "--demo", "dyad", "--write-config"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dyad", cfg.Demo)
}
