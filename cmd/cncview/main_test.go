package main

import (
	"bytes"
	"testing"

	"github.com/philipparndt/cncview/pkg/toolpath"
	"github.com/stretchr/testify/assert"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, []toolpath.MotionPoint{
		toolpath.NewPoint(0, 0, 5, toolpath.Rapid),
		toolpath.NewPoint(10, 0, 0, toolpath.Feed),
		toolpath.NewPoint(10, 20, 0, toolpath.Feed),
	}, 1)

	out := buf.String()
	assert.Contains(t, out, "Points: 3 (1 rapid, 2 feed)")
	assert.Contains(t, out, "Malformed: 1 dropped")
	assert.Contains(t, out, "Feed travel: 31.180 mm")
	assert.Contains(t, out, "Size: X 10.000  Y 20.000  Z 5.000")
	assert.Contains(t, out, "Long FEED move at point 2: 20.000 mm")
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, nil, 0)
	assert.Equal(t, "Points: 0 (0 rapid, 0 feed)\n", buf.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"view", "gui", "monitor", "status", "start", "stop", "clear", "upload", "parse", "files", "sketch-gcode", "version"} {
		assert.True(t, names[want], want)
	}
}
