/*
Package terminator deals with Ctrl+C termination.
*/
package terminator

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu       sync.Mutex
	nextID   int
	cleanFns = map[int]func(){}
)

// CleanFunc registers clean function. The returned function unregisters it.
func CleanFunc(f func()) func() {
	mu.Lock()
	defer mu.Unlock()

	id := nextID
	nextID++
	cleanFns[id] = f

	return func() {
		mu.Lock()
		defer mu.Unlock()
		delete(cleanFns, id)
	}
}

func runCleanFuncs() {
	mu.Lock()
	fns := make([]func(), 0, len(cleanFns))
	for _, f := range cleanFns {
		fns = append(fns, f)
	}
	mu.Unlock()

	for _, f := range fns {
		f()
	}
}

// Listen listens signals.
func Listen(ctx context.Context, w io.Writer) (context.Context, func()) {
	return listen(ctx, w, func() { os.Exit(130) })
}

func listen(ctx context.Context, w io.Writer, exitFn func()) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
		case <-ctx.Done():
			signal.Stop(ch)
			return
		}
		fmt.Fprintln(w, "\rCtrl+C pressed in Terminal")
		cancel()
		runCleanFuncs()
		exitFn()
	}()

	return ctx, cancel
}
