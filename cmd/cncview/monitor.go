package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/philipparndt/cncview/internal/schedule"
	"github.com/philipparndt/cncview/internal/session"
	"github.com/philipparndt/cncview/pkg/analysis"
	"github.com/philipparndt/cncview/pkg/scene"
	"github.com/spf13/cobra"
)

var (
	monitorEvery time.Duration
	monitorTrack bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow the controller without a window and log path statistics",
	Args:  cobra.NoArgs,
	RunE:  runMonitor,
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorEvery, "every", 5*time.Second, "how often to log path statistics")
	monitorCmd.Flags().BoolVar(&monitorTrack, "track", false, "start tracking immediately instead of waiting for the machine")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	surface := scene.NewHeadlessSurface(e.cfg.View.Width, e.cfg.View.Height)
	s, err := session.New(session.Options{
		Config:  e.cfg,
		Surface: surface,
		Backend: e.client(),
		Logger:  e.log,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	s.Run(ctx)
	if monitorTrack {
		s.StartTracking()
	}

	report := schedule.New(monitorEvery, func(ctx context.Context) {
		v := s.Display.View()
		path := analysis.AnalyzePath(s.Store.Snapshot().Points)
		e.log.Info().
			Str("state", string(v.State)).
			Str("progress", v.ProgressText()).
			Str("file", v.CurrentFile).
			Int("points", s.Renderer.PointCount()).
			Float64("feedLength", path.FeedLength).
			Float64("rapidLength", path.RapidLength).
			Int("segments", len(s.Renderer.Segments())).
			Uint64("generation", s.Renderer.Generation()).
			Bool("tracking", s.Tracking()).
			Int("frames", surface.Frames()).
			Msg("Path")
	})
	report.Start(ctx)
	defer report.Stop()

	<-ctx.Done()
	e.log.Info().Msg("Shutting down")
	return nil
}
