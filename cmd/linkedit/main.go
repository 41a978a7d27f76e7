// Command linkedit is a terminal editor for planar linkages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/linkage-toolkit/pkg/config"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		demo       string
		writeCfg   bool
	)
	cmd := &cobra.Command{
		Use:   "linkedit",
		Short: "Terminal editor for planar linkages",
		Long: `linkedit animates a linkage in the terminal and lets you edit it with
the mouse and a handful of keys.

  click point, point, canvas     add a point held by a triangle
  click point, canvas, canvas    add a ground segment
  click canvas, canvas, point    add a ground segment
  hold R (press twice), click    add a rotary input
  drag                           move points
  SPACE                          run / pause, trace a selected point
  D / O                          delete / fit the selected point's path
  S W T                          slower, faster, reverse
  Ctrl+E                         export a PNG
  q / Ctrl+C                     quit`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				configPath = p
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if demo != "" {
				cfg.Demo = demo
			}
			if writeCfg {
				if err := cfg.Save(configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
				return nil
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ~/"+config.FileName+")")
	cmd.Flags().StringVar(&demo, "demo", "", fmt.Sprintf("mechanism to start with %v", linkage.DemoNames()))
	cmd.Flags().BoolVar(&writeCfg, "write-config", false, "write the effective configuration and exit")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.Clear()

	ed, err := NewEditor(screen, cfg, log)
	if err != nil {
		return err
	}
	return ed.Run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
