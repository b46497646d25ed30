package main

import (
	"context"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/philipparndt/cncview/internal/gui"
	"github.com/philipparndt/cncview/internal/session"
	"github.com/philipparndt/cncview/pkg/viewer"
	"github.com/spf13/cobra"
)

var guiOffline bool

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop window with machine controls",
	Args:  cobra.NoArgs,
	RunE:  runGUI,
}

func init() {
	guiCmd.Flags().BoolVar(&guiOffline, "offline", false, "do not contact the controller")
	rootCmd.AddCommand(guiCmd)
}

func runGUI(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	a := fyneapp.NewWithID("io.github.philipparndt.cncview")
	w := a.NewWindow("cncview")

	view := viewer.NewPathView()
	s, err := session.New(session.Options{
		Config:  e.cfg,
		Surface: view.Surface(),
		Backend: e.backend(guiOffline),
		Logger:  e.log,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	gui.New(w, view, s, e.cfg.Server.Timeout, e.log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	s.Run(ctx)

	w.Resize(fyne.NewSize(float32(e.cfg.View.Width), float32(e.cfg.View.Height)))
	w.ShowAndRun()
	return nil
}
