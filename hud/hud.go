// Package hud draws frame statistics to the terminal.
package hud

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/myr"
)

// RefreshInterval is how much frame time passes between redraws.
const RefreshInterval = 250 * time.Millisecond

type HUD struct {
	title   string
	elapsed time.Duration
}

func Open(title string) (*HUD, error) {
	if err := termbox.Init(); err != nil {
		return nil, errors.Wrap(err, "could not init termbox")
	}
	termbox.SetOutputMode(termbox.Output256)
	termbox.HideCursor()
	return &HUD{title: title, elapsed: RefreshInterval}, nil
}

// Update redraws once RefreshInterval worth of frames has gone by.
func (h *HUD) Update(stats myr.FrameStats) {
	h.elapsed += stats.FrameTime
	if h.elapsed < RefreshInterval {
		return
	}
	h.elapsed = 0

	width, _ := termbox.Size()
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	for y, line := range Lines(h.title, stats) {
		fg := termbox.ColorWhite
		if y == 0 {
			fg = termbox.ColorYellow | termbox.AttrBold
		}
		printLine(0, y, Fit(line, width), fg)
	}
	termbox.Flush()
}

func (h *HUD) Close() {
	termbox.Close()
}

func printLine(x, y int, s string, fg termbox.Attribute) {
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x += runewidth.RuneWidth(r)
	}
}

// Lines lays out the stats, one entry per terminal row.
func Lines(title string, stats myr.FrameStats) []string {
	fps := 0.0
	if stats.FrameTime > 0 {
		fps = float64(time.Second) / float64(stats.FrameTime)
	}
	return []string{
		title,
		fmt.Sprintf("frame  %d", stats.Frames),
		fmt.Sprintf("slot   %d", stats.Slot),
		fmt.Sprintf("image  %d", stats.Image),
		fmt.Sprintf("alias  %d", stats.AliasWaits),
		fmt.Sprintf("time   %.2fms (%.0f fps)", float64(stats.FrameTime)/float64(time.Millisecond), fps),
	}
}

// Fit cuts s to at most width terminal columns.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "~")
}
