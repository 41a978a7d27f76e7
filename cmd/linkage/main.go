// Command linkage renders, inspects and optimizes planar linkages without
// the interactive editor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/linkage-toolkit/pkg/config"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// app carries what every subcommand needs once the root has set it up.
type app struct {
	configPath string
	demo       string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "linkage",
		Short: "Planar linkage toolkit",
		Long: `linkage works on the same mechanisms as the linkedit editor.

It renders frames with point trails to PNG or SVG, dumps cycle paths,
fits a point's path to a target headlessly, and inspects the editor's
gesture-level phase table.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/"+config.FileName+")")
	root.PersistentFlags().StringVar(&a.demo, "demo", "", "mechanism to load (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		a.demosCmd(),
		a.renderCmd(),
		a.pathsCmd(),
		a.optimizeCmd(),
		a.tableCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.demo != "" {
		cfg.Demo = a.demo
	}
	a.cfg = cfg

	if a.verbose {
		a.log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	}
	a.log, err = cfg.NewLogger()
	return err
}

func (a *app) load() (*linkage.Linkage, error) {
	lk, err := linkage.Demo(a.cfg.Demo, a.cfg.LinkageOptions())
	if err != nil {
		return nil, err
	}
	a.log.Debug("loaded mechanism",
		zap.String("demo", a.cfg.Demo),
		zap.Int("points", len(lk.Topology().Points)))
	return lk, nil
}

func (a *app) demosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demos",
		Short: "List the built-in mechanisms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range linkage.DemoNames() {
				lk, err := linkage.Demo(name, a.cfg.LinkageOptions())
				if err != nil {
					return err
				}
				topo := lk.Topology()
				fmt.Fprintf(out, "%-8s %2d points  %2d bars  %d rotaries\n",
					name, len(topo.Points), len(topo.Bars), len(topo.Rotaries))
			}
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
