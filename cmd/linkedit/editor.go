package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/linkage-toolkit/pkg/config"
	"github.com/ha1tch/linkage-toolkit/pkg/edit"
	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
	"github.com/ha1tch/linkage-toolkit/pkg/render"
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Refused edits, flash
	MsgSuccess                    // Completed actions, flash
	MsgWarning                    // Warnings, flash
)

// quitEvent is posted as interrupt data when the context ends.
type quitEvent struct{}

// Editor owns the screen and feeds terminal input to the edit Driver.
type Editor struct {
	screen tcell.Screen
	cfg    *config.Config
	log    *zap.Logger
	driver *edit.Driver

	view      view
	mouseDown bool
	holdingR  bool // R is a hold key; the terminal only reports presses
	lastFrame time.Time

	message           string
	messageType       MessageType
	messageFlashStart int64
}

// NewEditor loads the configured demo and starts it running.
func NewEditor(screen tcell.Screen, cfg *config.Config, log *zap.Logger) (*Editor, error) {
	lk, err := linkage.Demo(cfg.Demo, cfg.LinkageOptions())
	if err != nil {
		return nil, err
	}
	env := edit.NewEnv(cfg.Settings(), cfg.Fitter(), log)
	ed := &Editor{
		screen: screen,
		cfg:    cfg,
		log:    log,
		driver: edit.NewDriver(env, edit.NewUnpaused(env, lk)),
		view:   view{offX: 4, offY: 2},
	}
	ed.showMessage(fmt.Sprintf("Loaded %s", cfg.Demo), MsgInfo)
	return ed, nil
}

// Run processes events until the user quits or ctx ends.
func (ed *Editor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		ticker := time.NewTicker(ed.cfg.GetFrameInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = ed.screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
				return nil
			case <-ticker.C:
				_ = ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	})

	ed.lastFrame = time.Now()
	ed.loop()
	cancel()
	err := g.Wait()
	ed.driver.Close()
	ed.log.Info("editor closed", zap.Stringer("state", ed.driver.State()))
	return err
}

func (ed *Editor) loop() {
	for {
		ed.draw()
		ed.screen.Show()

		switch ev := ed.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(quitEvent); ok {
				return
			}
			ed.frame(ev.When())
		}
	}
}

// frame advances the simulation by the wall time since the last frame.
func (ed *Editor) frame(now time.Time) {
	dt := now.Sub(ed.lastFrame).Seconds()
	ed.lastFrame = now
	if dt <= 0 {
		return
	}
	if dt > 0.2 {
		dt = 0.2
	}
	ed.driver.Frame(dt)
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlE:
		ed.export()
	case tcell.KeyEscape:
		ed.holdingR = false
		ed.keystroke(edit.KeyEscape)
	case tcell.KeyLeft:
		ed.view.pan(4, 0)
	case tcell.KeyRight:
		ed.view.pan(-4, 0)
	case tcell.KeyUp:
		ed.view.pan(0, 2)
	case tcell.KeyDown:
		ed.view.pan(0, -2)
	case tcell.KeyRune:
		r := ev.Rune()
		if r == 'q' {
			return true
		}
		k := edit.KeyOf(r)
		if k == edit.KeyR {
			ed.toggleHold(k)
		} else {
			ed.keystroke(k)
		}
	}
	return false
}

// keystroke delivers a full press and reports refused actions.
func (ed *Editor) keystroke(k edit.Key) {
	before := ed.driver.State()
	ed.driver.Key(k)
	if ed.driver.State() != before {
		ed.clearMessage()
		return
	}
	switch {
	case k == edit.KeyD && (before.Kind() == edit.PointSelected || before.Kind() == edit.RotarySelected):
		ed.showMessage(fmt.Sprintf("Cannot remove %s", before.P0()), MsgError)
	case k == edit.KeyO && before.Kind() == edit.PointSelected:
		ed.showMessage(fmt.Sprintf("%s has no periodic path", before.P0()), MsgWarning)
	}
}

// toggleHold emulates holding a key: the first press goes down, the second
// releases it.
func (ed *Editor) toggleHold(k edit.Key) {
	if ed.holdingR {
		ed.holdingR = false
		ed.driver.KeyUp(k)
		return
	}
	ed.driver.KeyDown(k)
	ed.driver.KeyPress(k)
	ed.holdingR = ed.driver.State().Kind() == edit.PlacingRotary
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := ed.view.toCanvas(x, y)
	pressed := ev.Buttons()&tcell.Button1 != 0

	before := ed.driver.State()
	switch {
	case pressed && !ed.mouseDown:
		ed.mouseDown = true
		ed.driver.PointerDown(p)
	case !pressed && ed.mouseDown:
		ed.mouseDown = false
		ed.driver.PointerUp(p)
	default:
		ed.driver.PointerMove(p)
	}

	if ed.holdingR && ed.driver.State().Kind() != edit.PlacingRotary {
		ed.holdingR = false
	}
	if after := ed.driver.State(); after != before && after.Kind() == edit.Idle && before.Kind() != edit.Idle {
		ed.showMessage(fmt.Sprintf("%d points", len(ed.driver.Linkage().Topology().Points)), MsgInfo)
	}
}

// export writes the current frame as a PNG in the working directory.
func (ed *Editor) export() {
	name := fmt.Sprintf("linkage-%s.png", time.Now().Format("150405"))
	if err := ed.writePNG(name); err != nil {
		ed.log.Error("export failed", zap.Error(err))
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Exported "+name, MsgSuccess)
}

func (ed *Editor) writePNG(path string) error {
	st := ed.driver.State()
	lk := ed.driver.Linkage()
	scene := render.SceneBounds(lk.Positions(), st.TracePoints(), st.DrawnPoints(), st.PointPath())
	img, err := render.NewPNG(ed.cfg.PNGOptions(), scene)
	if err != nil {
		return err
	}
	ed.driver.Draw(img)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := img.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = time.Now().UnixMilli()
	// Trigger immediate refresh for flash animation
	if ed.screen != nil {
		_ = ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

func (ed *Editor) clearMessage() {
	ed.message = ""
	ed.messageFlashStart = 0
}

// view maps canvas units to terminal cells: two columns per unit across,
// one row per unit down.
type view struct {
	offX, offY int
}

func (v *view) pan(dx, dy int) {
	v.offX += dx
	v.offY += dy
}

func (v view) toCell(p geom.Point) (int, int) {
	return int(roundHalfUp(p.X*2)) + v.offX, int(roundHalfUp(p.Y)) + v.offY
}

func (v view) toCanvas(x, y int) geom.Point {
	return geom.Pt(float64(x-v.offX)/2, float64(y-v.offY))
}
