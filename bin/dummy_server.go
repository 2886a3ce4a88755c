//usr/bin/env go run $0 $@ ; exit

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hioki-daichi/sharedl/logger"
	"github.com/hioki-daichi/sharedl/remote"
	"github.com/hioki-daichi/sharedl/sharelink/sharetest"
)

func main() {
	opts := parse()

	share, err := loadShare(opts.dir, opts.plain)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("dir", opts.dir).Msg("could not load share")
	}

	fmt.Printf("share link: %s\n", sharetest.URL("http://localhost"+opts.addr, share))
	logger.Log.Info().Str("addr", opts.addr).Int("files", len(share.Entries)-1).Msg("serving share")
	if err := http.ListenAndServe(opts.addr, sharetest.NewHandler(share)); err != nil {
		logger.Log.Fatal().Err(err).Msg("server stopped")
	}
}

// loadShare exposes every regular file directly under dir inside one folder share.
func loadShare(dir string, plain bool) (*sharetest.Share, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	share := &sharetest.Share{
		ID:      "dummy",
		Kind:    remote.KindFolder,
		Entries: []sharetest.Entry{{Handle: "root", Kind: remote.KindFolder, Name: filepath.Base(dir)}},
		Roots:   []string{"root"},
	}
	if !plain {
		share.Key = sharetest.NewKey()
	}

	for i, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		share.Entries = append(share.Entries, sharetest.Entry{
			Handle:  "f" + strconv.Itoa(i),
			Parent:  "root",
			Kind:    remote.KindFile,
			Name:    e.Name(),
			Content: b,
		})
	}

	return share, nil
}

func parse() *options {
	flg := flag.NewFlagSet("dummy_server", flag.ExitOnError)
	port := flg.Int("port", 8080, "port")
	dir := flg.String("d", "./testdata", "directory to share")
	plain := flg.Bool("plain", false, "serve unencrypted content")
	flg.Parse(os.Args[1:])
	addr := ":" + strconv.Itoa(*port)
	return &options{addr: addr, dir: *dir, plain: *plain}
}

type options struct {
	addr  string
	dir   string
	plain bool
}
