/*
Package sharelink implements remote.Engine over the HTTP share API.

File content travels encrypted with chacha20 under the share key carried in the
link fragment, and is decrypted while streaming.
*/
package sharelink

import (
	"bytes"
	"context"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hioki-daichi/sharedl/logger"
	"github.com/hioki-daichi/sharedl/remote"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/net/publicsuffix"
)

var (
	errUnknownNode = errors.New("sharelink: node was not fetched from a share")
	errUnknownKind = errors.New("sharelink: unknown node kind")
)

// Config has the settings of an Engine.
type Config struct {
	// BaseURL is the API root, e.g. "https://share.example".
	BaseURL string

	// Timeout applies to each request. Zero means none.
	Timeout time.Duration

	// HTTPClient replaces the default client when set.
	HTTPClient *http.Client
}

type nodeRef struct {
	link  Link
	nonce []byte
}

// Engine talks to one share API.
type Engine struct {
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	token string
	refs  map[remote.Handle]nodeRef
}

var _ remote.Engine = (*Engine)(nil)

// New returns an Engine for cfg.
func New(cfg Config) (*Engine, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		client = &http.Client{Jar: jar, Timeout: cfg.Timeout}
	}

	return &Engine{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  client,
		refs:    make(map[remote.Handle]nodeRef),
	}, nil
}

// Login exchanges credentials for a session token.
func (e *Engine) Login(ctx context.Context, email, password, mfa string) error {
	body, err := json.Marshal(&LoginRequest{Email: email, Password: password, MFA: mfa})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+LoginPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status code: %d", remote.ErrAuth, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected response: status code: %d", resp.StatusCode)
	}

	var lr LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if lr.Token == "" {
		return fmt.Errorf("%w: empty token", remote.ErrAuth)
	}

	e.mu.Lock()
	e.token = lr.Token
	e.mu.Unlock()

	logger.Log.Debug().Str("email", email).Bool("mfa", mfa != "").Msg("logged in")
	return nil
}

// FetchPublicNodes resolves rawURL into its listing.
// Entries present in both roots and nodes share one *remote.Node.
func (e *Engine) FetchPublicNodes(ctx context.Context, rawURL string) (*remote.Listing, error) {
	link, err := ParseLink(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := e.newRequest(ctx, link.sharePath())
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch share %s: unexpected response: status code: %d", link.ID, resp.StatusCode)
	}

	var lr ListingResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	byHandle := make(map[remote.Handle]*remote.Node)
	convert := func(infos []NodeInfo) ([]*remote.Node, error) {
		ret := make([]*remote.Node, 0, len(infos))
		for _, info := range infos {
			h := remote.Handle(info.Handle)
			if n, ok := byHandle[h]; ok {
				ret = append(ret, n)
				continue
			}

			n, ref, err := toNode(info, link)
			if err != nil {
				return nil, err
			}
			byHandle[h] = n
			e.refs[h] = ref
			ret = append(ret, n)
		}
		return ret, nil
	}

	nodes, err := convert(lr.Nodes)
	if err != nil {
		return nil, err
	}
	roots, err := convert(lr.Roots)
	if err != nil {
		return nil, err
	}

	logger.Log.Debug().Str("share", link.ID).Int("nodes", len(nodes)).Int("roots", len(roots)).Msg("listing fetched")

	return &remote.Listing{Nodes: nodes, Roots: roots}, nil
}

func toNode(info NodeInfo, link Link) (*remote.Node, nodeRef, error) {
	var kind remote.Kind
	switch info.Kind {
	case remote.KindFile.String():
		kind = remote.KindFile
	case remote.KindFolder.String():
		kind = remote.KindFolder
	default:
		return nil, nodeRef{}, fmt.Errorf("%w: %q", errUnknownKind, info.Kind)
	}

	ref := nodeRef{link: link}
	if info.Nonce != "" {
		nonce, err := base64.StdEncoding.DecodeString(info.Nonce)
		if err != nil {
			return nil, nodeRef{}, fmt.Errorf("decode nonce of %s: %w", info.Handle, err)
		}
		ref.nonce = nonce
	}

	return &remote.Node{
		Handle: remote.Handle(info.Handle),
		Parent: remote.Handle(info.Parent),
		Kind:   kind,
		Name:   info.Name,
		Size:   info.Size,
	}, ref, nil
}

// DownloadNode streams the decrypted content of node into w.
func (e *Engine) DownloadNode(ctx context.Context, node *remote.Node, w io.Writer) error {
	e.mu.Lock()
	ref, ok := e.refs[node.Handle]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %w: %s", remote.ErrTransfer, errUnknownNode, node.Handle)
	}

	path := fmt.Sprintf("%s/nodes/%s/content", ref.link.sharePath(), url.PathEscape(string(node.Handle)))
	req, err := e.newRequest(ctx, path)
	if err != nil {
		return err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", remote.ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected response: status code: %d", remote.ErrTransfer, resp.StatusCode)
	}

	src, err := decrypter(resp.Body, ref)
	if err != nil {
		return fmt.Errorf("%w: %w", remote.ErrTransfer, err)
	}

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("%w: %w", remote.ErrTransfer, err)
	}

	return nil
}

func decrypter(r io.Reader, ref nodeRef) (io.Reader, error) {
	if ref.link.Key == nil {
		return r, nil
	}

	c, err := chacha20.NewUnauthenticatedCipher(ref.link.Key, ref.nonce)
	if err != nil {
		return nil, err
	}

	return &cipher.StreamReader{S: c, R: r}, nil
}

func (e *Engine) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	token := e.token
	e.mu.Unlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
