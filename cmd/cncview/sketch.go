package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/cncview/internal/sketch"
	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/spf13/cobra"
)

var sketchCmd = &cobra.Command{
	Use:   "sketch-gcode <points.json>",
	Short: "Print G-code for a point list",
	Long: `Read a trajectory JSON file (a point array or an object with
trajectoryPoints) and print G-code that follows it: G0 for rapid moves and
G1 for feed moves.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		points, malformed, err := toolpath.ReadPoints(f)
		if err != nil {
			return err
		}
		for _, m := range malformed {
			fmt.Fprintf(os.Stderr, "warning: %v\n", m)
		}
		if len(points) == 0 {
			return fmt.Errorf("%s contains no valid points", args[0])
		}
		fmt.Print(sketch.GCode(points))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sketchCmd)
}
