/*
Package progress reports how much of a file transfer has gone through.
*/
package progress

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// MinInterval bounds how often a Reporter renders.
const MinInterval = 100 * time.Millisecond

// Bar renders progress for one transfer.
type Bar interface {
	Set(n int64)
	Finish(msg string)
}

// Counter counts bytes. One goroutine adds, another loads.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Add(n int64) { c.n.Add(n) }
func (c *Counter) Load() int64 { return c.n.Load() }

type countingReader struct {
	r io.Reader
	c *Counter
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.c.Add(int64(n))
	}
	return n, err
}

// Reporter samples a Counter on a ticker and forwards the samples to a Bar.
type Reporter struct {
	bar      Bar
	total    int64
	interval time.Duration
	counter  Counter

	last    int64
	started bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewReporter returns a Reporter for a transfer of total bytes.
// Intervals shorter than MinInterval are raised to MinInterval.
func NewReporter(bar Bar, total int64, interval time.Duration) *Reporter {
	if interval < MinInterval {
		interval = MinInterval
	}
	if total < 0 {
		total = 0
	}
	return &Reporter{
		bar:      bar,
		total:    total,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Wrap returns a reader that counts the bytes read through r.
func (r *Reporter) Wrap(rd io.Reader) io.Reader {
	return &countingReader{r: rd, c: &r.counter}
}

// Start launches the render loop. It must be called at most once, by the
// goroutine that later calls Stop or Finish.
func (r *Reporter) Start() {
	r.started = true
	go r.loop()
}

func (r *Reporter) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sample(r.counter.Load())
		}
	}
}

// sample forwards v clamped to [last, total].
func (r *Reporter) sample(v int64) {
	if v > r.total {
		v = r.total
	}
	if v < r.last {
		return
	}
	r.last = v
	r.bar.Set(v)
}

func (r *Reporter) halt() {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.started {
		<-r.done
	}
}

// Stop ends the render loop without a done message.
func (r *Reporter) Stop() {
	r.halt()
}

// Finish ends the render loop, reports the full size and shows msg.
func (r *Reporter) Finish(msg string) {
	r.halt()
	r.sample(r.total)
	r.bar.Finish(msg)
}
