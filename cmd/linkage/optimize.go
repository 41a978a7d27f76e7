package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// result is what optimize --out writes.
type result struct {
	Point     string                `json:"point"`
	Fitness   float64               `json:"fitness"`
	Steps     int                   `json:"steps"`
	Topology  linkage.Topology      `json:"topology"`
	Positions map[string]geom.Point `json:"positions"`
	Target    []geom.Point          `json:"target"`
	Path      []geom.Point          `json:"path"`
}

func (a *app) optimizeCmd() *cobra.Command {
	var (
		point      string
		steps      int
		scale      float64
		targetFile string
		out        string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "optimize --point ID",
		Short: "Fit a point's path to a target without the editor",
		Long: `Run the path fitter for --steps iterations. The target is read from
--target (a JSON array of {"x","y"} points) or, by default, is the point's
current path scaled by --scale about its centroid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if point == "" {
				return errors.New("--point is required")
			}
			lk, err := a.load()
			if err != nil {
				return err
			}
			path := lk.Path(point)
			if path == nil {
				return fmt.Errorf("point %q has no periodic path", point)
			}

			var target []geom.Point
			if targetFile != "" {
				data, err := os.ReadFile(targetFile)
				if err != nil {
					return fmt.Errorf("reading target: %w", err)
				}
				if err := json.Unmarshal(data, &target); err != nil {
					return fmt.Errorf("parsing target: %w", err)
				}
			} else {
				target = scaleAbout(path, scale)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			fitter := a.cfg.Fitter()
			oc := fitter.Begin(target, lk, point)
			start := oc.Fitness
			a.log.Info("optimizing",
				zap.String("point", point),
				zap.Int("target", len(target)),
				zap.Float64("fitness", start))
			for oc.Iteration < steps && ctx.Err() == nil {
				oc = fitter.Step(oc)
				a.log.Debug("step", zap.Int("iteration", oc.Iteration), zap.Float64("fitness", oc.Fitness))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "fitness %.4f -> %.4f after %d steps\n", start, oc.Fitness, oc.Iteration)
			for _, b := range oc.Linkage.Topology().Bars {
				fmt.Fprintf(w, "  %s-%s %.3f\n", b.A, b.B, b.Length)
			}

			if out != "" {
				res := result{
					Point:     point,
					Fitness:   oc.Fitness,
					Steps:     oc.Iteration,
					Topology:  oc.Linkage.Topology(),
					Positions: oc.Linkage.Positions(),
					Target:    target,
					Path:      oc.Linkage.Path(point),
				}
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling result: %w", err)
				}
				if err := os.WriteFile(out, data, 0644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&point, "point", "p", "", "point whose path is fitted")
	cmd.Flags().IntVarP(&steps, "steps", "n", 50, "optimizer iterations")
	cmd.Flags().Float64Var(&scale, "scale", 1.1, "default target: current path scaled about its centroid")
	cmd.Flags().StringVar(&targetFile, "target", "", "JSON file with the target path")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the fitted mechanism as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop early after this long")
	return cmd
}

// scaleAbout scales pts about their centroid.
func scaleAbout(pts []geom.Point, k float64) []geom.Point {
	var c geom.Point
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Scale(1 / float64(len(pts)))
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = c.Add(p.Sub(c).Scale(k))
	}
	return out
}
