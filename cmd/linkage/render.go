package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
	"github.com/ha1tch/linkage-toolkit/pkg/render"
)

// frame is one simulated moment plus the trails leading up to it.
type frame struct {
	title     string
	positions map[string]geom.Point
	topo      linkage.Topology
	trails    map[string][]geom.Point
}

func (f frame) scene() []geom.Point {
	extra := make([][]geom.Point, 0, len(f.trails))
	for _, t := range f.trails {
		extra = append(extra, t)
	}
	return render.SceneBounds(f.positions, extra...)
}

// draw replays the frame onto any renderer, trails first.
func (f frame) draw(r render.Renderer) {
	ids := make([]string, 0, len(f.trails))
	for id := range f.trails {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r.DrawLines(f.trails[id], render.LineOptions{LineColor: render.ColorTrace})
	}
	r.DrawLinkage(f.positions, f.topo)
}

func (a *app) renderCmd() *cobra.Command {
	var (
		outputs []string
		frames  int
		dt      float64
		trace   []string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "render -o FILE [-o FILE...]",
		Short: "Render a frame of the mechanism to PNG or SVG",
		Long: `Advance the mechanism by --frames steps of --dt seconds, then write the
final frame to every output. The format follows the file extension.
Points named with --trace leave a trail of their recent positions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(outputs) == 0 {
				return errors.New("at least one --output is required")
			}
			for _, out := range outputs {
				if ext := strings.ToLower(filepath.Ext(out)); ext != ".png" && ext != ".svg" {
					return fmt.Errorf("unsupported output %q: want .png or .svg", out)
				}
			}

			lk, err := a.load()
			if err != nil {
				return err
			}
			f := frame{title: title, trails: make(map[string][]geom.Point)}
			for i := 0; i < frames; i++ {
				if !lk.Step(dt) {
					a.log.Debug("mechanism locked, reversed", zap.Int("frame", i))
				}
				for _, id := range trace {
					if p, ok := lk.Position(id); ok {
						f.trails[id] = append(f.trails[id], p)
					}
				}
			}
			f.positions, f.topo = lk.Positions(), lk.Topology()

			var g errgroup.Group
			for _, out := range outputs {
				out := out
				g.Go(func() error { return a.writeFrame(out, f) })
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for _, out := range outputs {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "output file (.png or .svg), repeatable")
	cmd.Flags().IntVar(&frames, "frames", 60, "simulation steps before the frame is taken")
	cmd.Flags().Float64Var(&dt, "dt", 0.05, "seconds per simulation step")
	cmd.Flags().StringSliceVar(&trace, "trace", nil, "points to draw trails for")
	cmd.Flags().StringVarP(&title, "title", "t", "", "title drawn above the mechanism")
	return cmd
}

func (a *app) writeFrame(path string, f frame) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		opts := a.cfg.SVGOptions()
		opts.Title = f.title
		svg := render.NewSVG(opts, f.scene())
		f.draw(svg)
		if err := os.WriteFile(path, []byte(svg.String()), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	default:
		opts := a.cfg.PNGOptions()
		opts.Title = f.title
		img, err := render.NewPNG(opts, f.scene())
		if err != nil {
			return err
		}
		f.draw(img)
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := img.Encode(file); err != nil {
			file.Close()
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", path, err)
		}
	}
	a.log.Debug("wrote frame", zap.String("path", path))
	return nil
}
