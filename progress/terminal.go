package progress

import (
	"fmt"
	"io"

	"github.com/hioki-daichi/sharedl/logger"
	"github.com/schollz/progressbar/v3"
)

type terminalBar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewTerminalBar returns a Bar drawing a byte progress bar for name on w.
func NewTerminalBar(w io.Writer, total int64, name string) Bar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(fmt.Sprintf("downloading %s...", name)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		// the Reporter already throttles
		progressbar.OptionThrottle(0),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "▨",
			SaucerHead:    "▨",
			SaucerPadding: "╌",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
	)
	return &terminalBar{w: w, bar: bar}
}

func (b *terminalBar) Set(n int64) {
	if err := b.bar.Set64(n); err != nil {
		logger.Log.Debug().Err(err).Int64("bytes", n).Msg("could not render progress")
	}
}

// Finish completes the bar and prints msg on its own line.
func (b *terminalBar) Finish(msg string) {
	if err := b.bar.Finish(); err != nil {
		logger.Log.Debug().Err(err).Msg("could not render progress")
	}
	fmt.Fprintf(b.w, "\n%s\n", msg)
}
