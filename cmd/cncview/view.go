package main

import (
	"os/signal"
	"syscall"

	"github.com/philipparndt/cncview/internal/app"
	"github.com/philipparndt/cncview/internal/session"
	"github.com/spf13/cobra"
)

var (
	watchFile   string
	viewOffline bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the native 3D viewer",
	Long: `Open a raylib window showing the controller's tool path. With --watch a
local trajectory JSON file is shown and reloaded whenever it changes.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVarP(&watchFile, "watch", "w", "", "local trajectory file to show and reload on change")
	viewCmd.Flags().BoolVar(&viewOffline, "offline", false, "do not contact the controller")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	win := app.NewWindow("cncview", e.cfg.View.Width, e.cfg.View.Height, e.cfg.View.FrameRate)
	s, err := session.New(session.Options{
		Config:     e.cfg,
		Surface:    win,
		Backend:    e.backend(viewOffline),
		SelfDriven: true,
		Logger:     e.log,
	})
	if err != nil {
		return err
	}

	viewer := app.New(s, win, app.Options{
		WatchFile:      watchFile,
		Debounce:       e.cfg.Watch.Debounce,
		CommandTimeout: e.cfg.Server.Timeout,
	}, e.log)
	return viewer.Run(ctx)
}
