package converter

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// startProgress shows how many pipelines of one backfill have been started. The zero value
// and the value returned for a disabled config are no-ops.
type startProgress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	failed    atomic.Int64
}

func newStartProgress(cfg ProgressConfig, bucket string, total int) *startProgress {
	if !cfg.Enabled || total == 0 {
		return &startProgress{}
	}
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	opts := []mpb.ContainerOption{
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120 * time.Millisecond),
	}
	// mpb only refreshes terminals on its own
	if !IsTTY(writer) {
		opts = append(opts, mpb.WithAutoRefresh())
	}
	p := &startProgress{container: mpb.New(opts...)}
	label := "backfill " + bucket
	p.bar = p.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(label+" ", decor.WC{W: len(label) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				if n := p.failed.Load(); n > 0 {
					return fmt.Sprintf("%d failed ", n)
				}
				return ""
			}),
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done"),
		),
	)
	return p
}

// done records one object. A failed start still advances the bar.
func (p *startProgress) done(ok bool) {
	if p.bar == nil {
		return
	}
	if !ok {
		p.failed.Add(1)
	}
	p.bar.Increment()
}

// finish waits for the last frame. A cancelled backfill leaves its bar in place, short of
// the total.
func (p *startProgress) finish(cancelled bool) {
	if p.container == nil {
		return
	}
	if cancelled {
		p.bar.Abort(false)
	}
	p.container.Wait()
}

func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok || file == nil {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// ShouldShowProgress enables bars when forced or when stderr is a terminal.
func ShouldShowProgress(forced bool) bool {
	return forced || IsTTY(os.Stderr)
}
