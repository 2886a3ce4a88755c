/*
Package opt deals with CLI options.
*/
package opt

import (
	"context"
	"net/url"

	"github.com/hioki-daichi/sharedl/config"
	"github.com/hioki-daichi/sharedl/logger"
	"github.com/urfave/cli/v2"
)

// Options has the options required for a download.
type Options struct {
	URL  string
	Path string

	Email    string
	Password string
	MFA      string
}

// HasCredentials reports whether a login should happen before resolution.
func (o *Options) HasCredentials() bool {
	return o.Email != "" && o.Password != ""
}

// RunFunc runs the download command.
type RunFunc func(ctx context.Context, opts *Options) error

// NewApp builds the command line application. Defaults come from cfg,
// credentials may also come from SHAREDL_EMAIL, SHAREDL_PASSWORD and SHAREDL_MFA.
func NewApp(cfg *config.Config, run RunFunc) *cli.App {
	return &cli.App{
		Name:  "sharedl",
		Usage: "Download files from public share links",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "verbosity",
				Aliases: []string{"v"},
				Usage:   "Sets the logger's verbosity level (off, error, warn, info, debug, trace)",
				Value:   cfg.Log.Level,
			},
		},
		Before: func(c *cli.Context) error {
			if _, err := logger.ParseLevel(c.String("verbosity")); err != nil {
				return err
			}
			logger.SetLevel(c.String("verbosity"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "download",
				Usage: "Download one or more files from a share link",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "The public URL to download from",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "The path to save the downloaded files",
						Value:   cfg.Download.Dir,
					},
					&cli.StringFlag{
						Name:    "email",
						Usage:   "The email to use if logging in",
						EnvVars: []string{"SHAREDL_EMAIL"},
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "The password to use if logging in",
						EnvVars: []string{"SHAREDL_PASSWORD"},
					},
					&cli.StringFlag{
						Name:    "mfa",
						Usage:   "The two-factor authentication code to use if logging in",
						EnvVars: []string{"SHAREDL_MFA"},
					},
				},
				Action: func(c *cli.Context) error {
					opts, err := parse(c)
					if err != nil {
						return err
					}
					return run(c.Context, opts)
				},
			},
		},
	}
}

func parse(c *cli.Context) (*Options, error) {
	rawURL := c.String("url")
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, err
	}

	return &Options{
		URL:      rawURL,
		Path:     c.String("path"),
		Email:    c.String("email"),
		Password: c.String("password"),
		MFA:      c.String("mfa"),
	}, nil
}
