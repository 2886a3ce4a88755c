/*
Package downloading streams selected remote nodes into local files.
*/
package downloading

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hioki-daichi/sharedl/logger"
	"github.com/hioki-daichi/sharedl/pipe"
	"github.com/hioki-daichi/sharedl/progress"
	"github.com/hioki-daichi/sharedl/remote"
	"github.com/hioki-daichi/sharedl/terminator"
	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"
)

const defaultBufferSize = 256 * 1024

var (
	// ErrIO is wrapped by every local file failure.
	ErrIO = errors.New("local i/o failure")

	// ErrInsufficientSpace is returned when the destination cannot hold a node.
	ErrInsufficientSpace = fmt.Errorf("%w: insufficient disk space", ErrIO)

	errInvalidName = fmt.Errorf("%w: invalid file name", ErrIO)
)

// NodeDownloader streams the decrypted content of a node.
type NodeDownloader interface {
	DownloadNode(ctx context.Context, node *remote.Node, w io.Writer) error
}

// Options has the settings of a Downloader.
type Options struct {
	// Dir is the destination directory.
	Dir string

	// BufferSize bounds the bytes in flight between the engine and the file.
	BufferSize int

	ProgressInterval time.Duration
}

// Downloader has the information for the download.
type Downloader struct {
	// Progress bars are drawn on outStream.
	outStream        io.Writer
	engine           NodeDownloader
	dir              string
	bufferSize       int
	progressInterval time.Duration

	newBar     func(w io.Writer, total int64, name string) progress.Bar
	freeSpace  func(dir string) (uint64, error)
	createFile func(path string) (io.WriteCloser, error)
}

// NewDownloader generates Downloader based on Options.
func NewDownloader(w io.Writer, engine NodeDownloader, opts *Options) *Downloader {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Downloader{
		outStream:        w,
		engine:           engine,
		dir:              dir,
		bufferSize:       bufferSize,
		progressInterval: opts.ProgressInterval,
		newBar:           progress.NewTerminalBar,
		freeSpace:        diskFree,
		createFile:       createFile,
	}
}

// Download transfers nodes one after the other and returns the created file paths in order.
// The first failure aborts the remaining nodes.
func (d *Downloader) Download(ctx context.Context, nodes []*remote.Node) ([]string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	created := make([]string, 0, len(nodes))
	for _, node := range nodes {
		logger.Log.Debug().Str("handle", string(node.Handle)).Str("name", node.Name).Int64("size", node.Size).Msg("start transfer")

		dst, err := d.downloadNode(ctx, node)
		if err != nil {
			return nil, err
		}

		logger.Log.Debug().Str("path", dst).Msg("transfer completed")
		created = append(created, dst)
	}

	return created, nil
}

func (d *Downloader) downloadNode(ctx context.Context, node *remote.Node) (string, error) {
	name := filepath.Base(node.Name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", errInvalidName, node.Name)
	}

	if err := d.checkFreeSpace(node.Size); err != nil {
		return "", err
	}

	dst := filepath.Join(d.dir, name)
	tmp := filepath.Join(d.dir, fmt.Sprintf(".%s.%s.part", name, genUUID()))

	fp, err := d.createFile(tmp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	unregister := terminator.CleanFunc(func() { os.Remove(tmp) })
	defer unregister()

	pr, pw := pipe.New(d.bufferSize)

	rep := progress.NewReporter(d.newBar(d.outStream, node.Size, name), node.Size, d.progressInterval)
	src := rep.Wrap(pr)
	rep.Start()

	var first firstError
	var eg errgroup.Group

	eg.Go(func() error {
		_, err := io.Copy(fp, src)
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			err = fmt.Errorf("%w: writing %s: %w", ErrIO, name, err)
			first.set(err)
			// release a producer blocked on a full pipe
			pr.CloseWithError(err)
		}
		return err
	})

	if err := d.engine.DownloadNode(ctx, node, pw); err != nil {
		first.set(fmt.Errorf("%w: %s: %w", remote.ErrTransfer, name, err))
		pw.CloseWithError(err)
	} else {
		pw.Close()
	}

	// the consumer reports through first
	_ = eg.Wait()

	if err := first.get(); err != nil {
		rep.Stop()
		os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, dst); err != nil {
		rep.Stop()
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}

	rep.Finish(fmt.Sprintf("%s downloaded !", name))

	return dst, nil
}

func (d *Downloader) checkFreeSpace(size int64) error {
	if d.freeSpace == nil || size <= 0 {
		return nil
	}

	free, err := d.freeSpace(d.dir)
	if err != nil {
		logger.Log.Warn().Err(err).Str("dir", d.dir).Msg("could not probe free disk space")
		return nil
	}

	if uint64(size) > free {
		return fmt.Errorf("%w: need %d bytes, %d available in %s", ErrInsufficientSpace, size, free, d.dir)
	}

	return nil
}

// firstError keeps the first error set by either side of a transfer.
type firstError struct {
	once sync.Once
	err  error
}

func (f *firstError) set(err error) {
	f.once.Do(func() { f.err = err })
}

func (f *firstError) get() error {
	return f.err
}

func diskFree(dir string) (uint64, error) {
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

func createFile(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
}

func genUUID() string {
	u, err := uuid.NewRandom()
	if err != nil {
		panic(err)
	}
	return u.String()
}
