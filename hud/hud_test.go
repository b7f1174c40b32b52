package hud_test

import (
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlw/myrcube/hud"
	"github.com/perlw/myrcube/myr"
)

func TestLines(t *testing.T) {
	stats := myr.FrameStats{FrameTime: 20 * time.Millisecond}
	stats.Frames = 42
	stats.Slot = 1
	stats.Image = 2
	stats.AliasWaits = 3

	lines := hud.Lines("cube", stats)
	require.Len(t, lines, 6)
	assert.Equal(t, "cube", lines[0])
	assert.Equal(t, "frame  42", lines[1])
	assert.Equal(t, "slot   1", lines[2])
	assert.Equal(t, "image  2", lines[3])
	assert.Equal(t, "alias  3", lines[4])
	assert.Equal(t, "time   20.00ms (50 fps)", lines[5])
}

func TestLinesNoFrameTime(t *testing.T) {
	lines := hud.Lines("", myr.FrameStats{})
	assert.Equal(t, "time   0.00ms (0 fps)", lines[5])
}

func TestFit(t *testing.T) {
	assert.Equal(t, "frame", hud.Fit("frame", 10))
	assert.Equal(t, "", hud.Fit("frame", 0))

	cut := hud.Fit("frame statistics", 8)
	assert.LessOrEqual(t, runewidth.StringWidth(cut), 8)
	assert.Equal(t, "frame s~", cut)

	wide := hud.Fit("立方体立方体", 5)
	assert.LessOrEqual(t, runewidth.StringWidth(wide), 5)
}
