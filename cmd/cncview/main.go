package main

import (
	"fmt"
	"io"
	"os"

	"github.com/philipparndt/cncview/internal/client"
	"github.com/philipparndt/cncview/internal/config"
	"github.com/philipparndt/cncview/internal/logging"
	"github.com/philipparndt/cncview/internal/session"
	"github.com/philipparndt/cncview/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "cncview",
	Short: "Live 3D view of a CNC controller's tool path",
	Long: `cncview renders the trajectory reported by a CNC controller as 3D lines,
red for rapid moves and cyan for feed moves, and keeps the view in sync
with the machine while it runs.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ./cncview.yaml or ~/.config/cncview/cncview.yaml)")
	flags.StringVar(&serverURL, "server", "", "controller base URL, overrides server.url")
	flags.StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
}

// env is the configuration and logger shared by every command
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	logFile io.Closer
}

func (e *env) Close() {
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// setup loads the configuration, applies flag overrides and builds the logger
func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	e := &env{cfg: cfg}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if f != nil {
		e.logFile = f
		e.log = logging.Setup(cfg.LogLevel, f)
	} else {
		e.log = logging.Setup(cfg.LogLevel, nil)
	}
	return e, nil
}

func (e *env) client() *client.Client {
	return client.New(e.cfg.Server.URL, e.cfg.Server.Timeout)
}

// backend returns the controller for a session, or nil when offline
func (e *env) backend(offline bool) session.Backend {
	if offline {
		return nil
	}
	return e.client()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
