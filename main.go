package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hioki-daichi/sharedl/config"
	"github.com/hioki-daichi/sharedl/downloading"
	"github.com/hioki-daichi/sharedl/handle"
	"github.com/hioki-daichi/sharedl/logger"
	"github.com/hioki-daichi/sharedl/opt"
	"github.com/hioki-daichi/sharedl/prompt"
	"github.com/hioki-daichi/sharedl/remote"
	"github.com/hioki-daichi/sharedl/selecting"
	"github.com/hioki-daichi/sharedl/sharelink"
	"github.com/hioki-daichi/sharedl/terminator"
)

func main() {
	err := execute(os.Stdout, os.Args[1:])
	if err != nil {
		logger.Log.Error().Err(err).Msg("download failed")
		os.Exit(1)
	}
}

func execute(w io.Writer, args []string) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Log.Level)

	ctx, cancel := terminator.Listen(context.Background(), w)
	defer cancel()

	app := opt.NewApp(cfg, func(ctx context.Context, opts *opt.Options) error {
		engine, err := newEngine(cfg, opts.URL)
		if err != nil {
			return err
		}

		dopts := &downloading.Options{
			Dir:              opts.Path,
			BufferSize:       cfg.Download.PipeBufferSize,
			ProgressInterval: cfg.Download.ProgressInterval,
		}

		_, err = download(ctx, w, engine, &prompt.Terminal{}, opts, dopts)
		return err
	})
	app.Writer = w

	return app.RunContext(ctx, append([]string{"sharedl"}, args...))
}

func newEngine(cfg *config.Config, rawURL string) (*sharelink.Engine, error) {
	base := cfg.API.URL
	if base == "" {
		link, err := sharelink.ParseLink(rawURL)
		if err != nil {
			return nil, err
		}
		base = link.BaseURL
	}

	return sharelink.New(sharelink.Config{BaseURL: base, Timeout: cfg.API.Timeout})
}

// download resolves opts.URL and transfers the selected files, returning their paths.
func download(ctx context.Context, w io.Writer, engine remote.Engine, p selecting.Prompter, opts *opt.Options, dopts *downloading.Options) ([]string, error) {
	if opts.HasCredentials() {
		if err := engine.Login(ctx, opts.Email, opts.Password, opts.MFA); err != nil {
			if !errors.Is(err, remote.ErrAuth) {
				err = fmt.Errorf("%w: %w", remote.ErrAuth, err)
			}
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	h, ok := handle.Extract(opts.URL)
	if ok {
		logger.Log.Debug().Str("handle", h).Msg("file handle found in link")
	}

	listing, err := engine.FetchPublicNodes(ctx, opts.URL)
	if err != nil {
		return nil, err
	}

	nodes, err := selecting.Select(listing, remote.Handle(h), p)
	if err != nil {
		return nil, err
	}

	created, err := downloading.NewDownloader(w, engine, dopts).Download(ctx, nodes)
	if err != nil {
		return nil, err
	}

	for _, name := range created {
		fmt.Fprintf(w, "created: %q\n", name)
	}

	return created, nil
}
