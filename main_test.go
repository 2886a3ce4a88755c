package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hioki-daichi/sharedl/downloading"
	"github.com/hioki-daichi/sharedl/opt"
	"github.com/hioki-daichi/sharedl/remote"
	"github.com/hioki-daichi/sharedl/selecting"
	"github.com/hioki-daichi/sharedl/sharelink/sharetest"
)

type memoryEngine struct {
	listing  *remote.Listing
	contents map[remote.Handle]string
	loginErr error

	logins    int
	lastMFA   string
	downloads []remote.Handle
}

func (e *memoryEngine) Login(ctx context.Context, email, password, mfa string) error {
	e.logins++
	e.lastMFA = mfa
	return e.loginErr
}

func (e *memoryEngine) FetchPublicNodes(ctx context.Context, url string) (*remote.Listing, error) {
	return e.listing, nil
}

func (e *memoryEngine) DownloadNode(ctx context.Context, node *remote.Node, w io.Writer) error {
	e.downloads = append(e.downloads, node.Handle)
	_, err := io.WriteString(w, e.contents[node.Handle])
	return err
}

type scriptedPrompter struct {
	choice int
	calls  int
}

func (p *scriptedPrompter) Select(label string, items []string) (int, error) {
	p.calls++
	return p.choice, nil
}

func file(h remote.Handle, name, content string) *remote.Node {
	return &remote.Node{Handle: h, Kind: remote.KindFile, Name: name, Size: int64(len(content))}
}

func threeFiles() *memoryEngine {
	root := &remote.Node{Handle: "R", Kind: remote.KindFolder, Name: "root"}
	return &memoryEngine{
		listing: &remote.Listing{
			Nodes: []*remote.Node{root, file("A", "a.txt", "aaa"), file("B", "b.txt", "bb"), file("C", "c.txt", "c")},
			Roots: []*remote.Node{root},
		},
		contents: map[remote.Handle]string{"A": "aaa", "B": "bb", "C": "c"},
	}
}

func TestMain_download_ExplicitHandle(t *testing.T) {
	dir := t.TempDir()
	engine := &memoryEngine{
		listing:  &remote.Listing{Nodes: []*remote.Node{file("OTHER", "other.txt", "o"), file("XYZ", "xyz.txt", "xyz")}},
		contents: map[remote.Handle]string{"XYZ": "xyz"},
	}
	p := &scriptedPrompter{}

	created, err := download(context.Background(), io.Discard, engine, p, &opt.Options{URL: "https://example.test/folder/ABC/file/XYZ"}, &downloading.Options{Dir: dir})
	if err != nil {
		t.Fatalf("err %s", err)
	}

	if !reflect.DeepEqual(created, []string{filepath.Join(dir, "xyz.txt")}) {
		t.Errorf(`unexpected created files: %v`, created)
	}
	if p.calls != 0 {
		t.Errorf(`unexpected prompt: %d`, p.calls)
	}
	if engine.logins != 0 {
		t.Errorf(`unexpected login: %d`, engine.logins)
	}
}

func TestMain_download_SelectAll(t *testing.T) {
	dir := t.TempDir()
	engine := threeFiles()
	// a.txt, b.txt, c.txt, then the sentinel
	p := &scriptedPrompter{choice: 3}

	var out bytes.Buffer
	created, err := download(context.Background(), &out, engine, p, &opt.Options{URL: "https://example.test/folder/ABC"}, &downloading.Options{Dir: dir})
	if err != nil {
		t.Fatalf("err %s", err)
	}

	expected := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"), filepath.Join(dir, "c.txt")}
	if !reflect.DeepEqual(created, expected) {
		t.Errorf(`unexpected created files: expected: %v actual: %v`, expected, created)
	}
	if !reflect.DeepEqual(engine.downloads, []remote.Handle{"A", "B", "C"}) {
		t.Errorf(`unexpected download order: %v`, engine.downloads)
	}
	if p.calls != 1 {
		t.Errorf(`unexpected prompt calls: %d`, p.calls)
	}
	for _, path := range expected {
		if !strings.Contains(out.String(), `created: "`+path+`"`) {
			t.Errorf(`created file not reported: %s`, path)
		}
	}
}

func TestMain_download_HandleNotFound(t *testing.T) {
	dir := t.TempDir()
	engine := threeFiles()

	_, err := download(context.Background(), io.Discard, engine, &scriptedPrompter{}, &opt.Options{URL: "https://example.test/folder/ABC/file/MISSING"}, &downloading.Options{Dir: dir})
	if !errors.Is(err, selecting.ErrNotFound) {
		t.Fatalf(`unexpected error: "%v"`, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(entries) != 0 || len(engine.downloads) != 0 {
		t.Errorf(`no file should be created: %v`, entries)
	}
}

func TestMain_download_Login(t *testing.T) {
	cases := map[string]struct {
		opts           *opt.Options
		loginErr       error
		expectedLogins int
		expectedErr    error
	}{
		"no credentials": {opts: &opt.Options{Email: "me@example.test"}, expectedLogins: 0},
		"with mfa":       {opts: &opt.Options{Email: "me@example.test", Password: "pw", MFA: "123456"}, expectedLogins: 1},
		"rejected":       {opts: &opt.Options{Email: "me@example.test", Password: "pw"}, loginErr: errors.New("bad password"), expectedLogins: 1, expectedErr: remote.ErrAuth},
	}

	for n, c := range cases {
		c := c
		t.Run(n, func(t *testing.T) {
			engine := threeFiles()
			engine.loginErr = c.loginErr
			c.opts.URL = "https://example.test/folder/ABC/file/A"

			_, err := download(context.Background(), io.Discard, engine, &scriptedPrompter{}, c.opts, &downloading.Options{Dir: t.TempDir()})
			if c.expectedErr == nil && err != nil {
				t.Fatalf("err %s", err)
			}
			if !errors.Is(err, c.expectedErr) {
				t.Errorf(`unexpected error: expected: "%v" actual: "%v"`, c.expectedErr, err)
			}
			if engine.logins != c.expectedLogins {
				t.Errorf(`unexpected logins: expected: %d actual: %d`, c.expectedLogins, engine.logins)
			}
			if engine.lastMFA != c.opts.MFA {
				t.Errorf(`unexpected mfa: "%s"`, engine.lastMFA)
			}
			if c.expectedErr != nil && len(engine.downloads) != 0 {
				t.Error("nothing should be downloaded after a failed login")
			}
		})
	}
}

func TestMain_execute(t *testing.T) {
	share := &sharetest.Share{
		ID:      "XYZ",
		Kind:    remote.KindFile,
		Key:     sharetest.NewKey(),
		Entries: []sharetest.Entry{{Handle: "XYZ", Kind: remote.KindFile, Name: "foo.bin", Content: []byte(strings.Repeat("foo", 10000))}},
		Roots:   []string{"XYZ"},
	}
	ts := sharetest.NewServer(share)
	defer ts.Close()

	dir := t.TempDir()

	var out bytes.Buffer
	if err := execute(&out, []string{"-v", "off", "download", "--url", sharetest.URL(ts.URL, share), "--path", dir}); err != nil {
		t.Fatalf("err %s", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "foo.bin"))
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if string(b) != strings.Repeat("foo", 10000) {
		t.Errorf("unexpected content: %d bytes", len(b))
	}
	if !strings.Contains(out.String(), "foo.bin downloaded !") {
		t.Errorf(`done message not rendered: %q`, out.String())
	}
}
