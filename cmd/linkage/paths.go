package main

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
)

// pointPath is one entry of the paths output.
type pointPath struct {
	ID     string       `json:"id"`
	Length float64      `json:"length"`
	Min    geom.Point   `json:"min"`
	Max    geom.Point   `json:"max"`
	Points []geom.Point `json:"points"`
}

func (a *app) pathsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "paths [point...]",
		Short: "Print the drive-cycle path of points",
		Long: `Compute the path each point follows over one drive cycle. Without
arguments every moving point with a periodic path is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lk, err := a.load()
			if err != nil {
				return err
			}
			ids := args
			strict := len(args) > 0
			if !strict {
				topo := lk.Topology()
				for _, id := range topo.Points {
					if !topo.IsGround(id) {
						ids = append(ids, id)
					}
				}
			}

			results := make([]*pointPath, len(ids))
			var g errgroup.Group
			for i, id := range ids {
				i, id := i, id
				g.Go(func() error {
					path := lk.Path(id)
					if path == nil {
						if strict {
							return fmt.Errorf("point %q has no periodic path", id)
						}
						return nil
					}
					results[i] = summarize(id, path)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			found := make([]*pointPath, 0, len(results))
			for _, r := range results {
				if r != nil {
					found = append(found, r)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(found)
			}
			for _, r := range found {
				fmt.Fprintf(out, "%-6s %3d samples  length %8.3f  bounds (%.2f,%.2f)-(%.2f,%.2f)\n",
					r.ID, len(r.Points), r.Length, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON including every sample")
	return cmd
}

// summarize measures a closed path.
func summarize(id string, path []geom.Point) *pointPath {
	pp := &pointPath{ID: id, Points: path}
	pp.Min, pp.Max, _ = geom.Bounds(path)
	for i := range path {
		pp.Length += geom.Dist(path[i], path[(i+1)%len(path)])
	}
	pp.Length = math.Round(pp.Length*1e6) / 1e6
	return pp
}
