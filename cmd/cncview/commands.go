package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/philipparndt/cncview/internal/client"
	"github.com/philipparndt/cncview/internal/status"
	"github.com/philipparndt/cncview/pkg/analysis"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/spf13/cobra"
)

var parseJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the controller's current status",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) error {
		snap, err := c.Status(ctx)
		if err != nil {
			return err
		}
		d := status.NewDisplay()
		d.Apply(snap)
		for _, line := range d.View().Lines() {
			fmt.Println(line)
		}
		if snap.HasPoints {
			fmt.Printf("Trajectory: %d points", len(snap.Points))
			if len(snap.Malformed) > 0 {
				fmt.Printf(" (%d malformed dropped)", len(snap.Malformed))
			}
			fmt.Println()
		}
		return nil
	}),
}

var startCmd = &cobra.Command{
	Use:   "start <file>",
	Short: "Start machining an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) error {
		if err := c.Start(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Started %s\n", args[0])
		return nil
	}),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop machining",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) error {
		if err := c.Stop(ctx); err != nil {
			return err
		}
		fmt.Println("Stopped")
		return nil
	}),
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the controller's recorded trajectory",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) error {
		if err := c.ClearTrajectory(ctx); err != nil {
			return err
		}
		fmt.Println("Trajectory cleared")
		return nil
	}),
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a program file to the controller",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) error {
		if err := c.Upload(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Uploaded %s\n", args[0])
		return nil
	}),
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Ask the controller for the tool path of an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) error {
		res, err := c.Parse(ctx, args[0])
		if err != nil {
			return err
		}
		if parseJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(toolpath.EncodePoints(res.Points))
		}
		writeSummary(os.Stdout, res.Points, len(res.Malformed))
		return nil
	}),
}

var filesCmd = &cobra.Command{
	Use:   "files [dir]",
	Short: "List program files on the controller",
	Args:  cobra.MaximumNArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		list, err := c.ListFiles(ctx, dir)
		if err != nil {
			return err
		}
		for _, f := range list.Folders {
			fmt.Printf("%s/\n", f)
		}
		for _, f := range list.Files {
			fmt.Println(f)
		}
		for _, e := range list.Errors {
			fmt.Fprintf(os.Stderr, "warning: %s\n", e)
		}
		return nil
	}),
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the points as JSON")
	rootCmd.AddCommand(statusCmd, startCmd, stopCmd, clearCmd, uploadCmd, parseCmd, filesCmd)
}

// withClient loads the configuration and runs fn against the controller
func withClient(fn func(ctx context.Context, c *client.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Server.Timeout)
		defer cancel()

		c := e.client()
		e.log.Debug().Str("server", c.BaseURL()).Str("command", cmd.Name()).Msg("Contacting controller")
		return fn(ctx, c, args)
	}
}

// writeSummary prints move counts, travel and the extent of a path
func writeSummary(w io.Writer, points []toolpath.MotionPoint, malformed int) {
	r := analysis.AnalyzePath(points)

	fmt.Fprintf(w, "Points: %d (%d rapid, %d feed)\n", r.PointCount, r.RapidCount, r.FeedCount)
	if malformed > 0 {
		fmt.Fprintf(w, "Malformed: %d dropped\n", malformed)
	}
	if r.PointCount == 0 {
		return
	}

	fmt.Fprintf(w, "Feed travel: %s\n", analysis.FormatMeasurement(r.FeedLength, ""))
	fmt.Fprintf(w, "Rapid travel: %s\n", analysis.FormatMeasurement(r.RapidLength, ""))
	fmt.Fprintf(w, "Min: %s\n", analysis.FormatVector(r.BoundingBox.Min))
	fmt.Fprintf(w, "Max: %s\n", analysis.FormatVector(r.BoundingBox.Max))
	fmt.Fprintf(w, "Size: %s\n", analysis.FormatVector(r.Dimensions))
	for _, m := range analysis.FindLongestMoves(r, 3) {
		fmt.Fprintf(w, "Long %s move at point %d: %s\n", m.Move, m.Index, analysis.FormatMeasurement(m.Length, ""))
	}
}
