/*
Package sharetest serves the share API from memory, for tests and local runs.
*/
package sharetest

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/hioki-daichi/sharedl/remote"
	"github.com/hioki-daichi/sharedl/sharelink"
	"golang.org/x/crypto/chacha20"
)

// Entry is one node of a share. Content is ignored for folders.
type Entry struct {
	Handle  string
	Parent  string
	Kind    remote.Kind
	Name    string
	Content []byte

	// FailAfter aborts the content response after that many bytes when positive.
	FailAfter int
}

// User is an account accepted by the login endpoint.
type User struct {
	Email    string
	Password string
	MFA      string
}

// Share describes what the server exposes.
type Share struct {
	ID   string
	Kind remote.Kind
	// Key encrypts content when set. It must be sharelink.KeySize bytes.
	Key []byte

	Entries []Entry
	// Roots lists the handles also reported as roots.
	Roots []string

	Users []User
	// Private requires a session token for listing and content.
	Private bool
}

// Handler implements the share API for one Share.
type Handler struct {
	share *Share
	mux   *http.ServeMux

	mu     sync.Mutex
	tokens map[string]bool
}

// NewHandler returns a Handler serving s.
func NewHandler(s *Share) *Handler {
	h := &Handler{share: s, mux: http.NewServeMux(), tokens: make(map[string]bool)}
	h.mux.HandleFunc("POST "+sharelink.LoginPath, h.login)
	h.mux.HandleFunc("GET /api/v1/shares/{kind}/{id}", h.listing)
	h.mux.HandleFunc("GET /api/v1/shares/{kind}/{id}/nodes/{handle}/content", h.content)
	return h
}

// NewServer starts an httptest.Server serving s.
func NewServer(s *Share) *httptest.Server {
	return httptest.NewServer(NewHandler(s))
}

// URL returns the share link of s on base, with its key when encrypted.
func URL(base string, s *Share) string {
	u := fmt.Sprintf("%s/%s/%s", base, s.Kind, s.ID)
	if s.Key != nil {
		u += "#" + sharelink.EncodeKey(s.Key)
	}
	return u
}

// NewKey returns a random share key.
func NewKey() []byte {
	key := make([]byte, sharelink.KeySize)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req sharelink.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, u := range h.share.Users {
		if u.Email == req.Email && u.Password == req.Password && u.MFA == req.MFA {
			token := base64.RawURLEncoding.EncodeToString(NewKey())
			h.mu.Lock()
			h.tokens[token] = true
			h.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(&sharelink.LoginResponse{Token: token})
			return
		}
	}

	http.Error(w, "invalid credentials", http.StatusUnauthorized)
}

func (h *Handler) authorized(r *http.Request) bool {
	if !h.share.Private {
		return true
	}
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tokens[auth[len(prefix):]]
}

func (h *Handler) matches(r *http.Request) bool {
	return r.PathValue("kind") == h.share.Kind.String() && r.PathValue("id") == h.share.ID
}

func (h *Handler) listing(w http.ResponseWriter, r *http.Request) {
	if !h.matches(r) {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "login required", http.StatusForbidden)
		return
	}

	infos := make(map[string]sharelink.NodeInfo, len(h.share.Entries))
	resp := sharelink.ListingResponse{
		Nodes: make([]sharelink.NodeInfo, 0, len(h.share.Entries)),
		Roots: make([]sharelink.NodeInfo, 0, len(h.share.Roots)),
	}
	for _, e := range h.share.Entries {
		info := sharelink.NodeInfo{
			Handle: e.Handle,
			Parent: e.Parent,
			Kind:   e.Kind.String(),
			Name:   e.Name,
		}
		if e.Kind.IsFile() {
			info.Size = int64(len(e.Content))
			if h.share.Key != nil {
				info.Nonce = base64.StdEncoding.EncodeToString(nonce(e.Handle))
			}
		}
		infos[e.Handle] = info
		resp.Nodes = append(resp.Nodes, info)
	}
	for _, handle := range h.share.Roots {
		if info, ok := infos[handle]; ok {
			resp.Roots = append(resp.Roots, info)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&resp)
}

func (h *Handler) content(w http.ResponseWriter, r *http.Request) {
	if !h.matches(r) {
		http.NotFound(w, r)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "login required", http.StatusForbidden)
		return
	}

	var entry *Entry
	for i := range h.share.Entries {
		if e := &h.share.Entries[i]; e.Handle == r.PathValue("handle") && e.Kind.IsFile() {
			entry = e
		}
	}
	if entry == nil {
		http.NotFound(w, r)
		return
	}

	body := entry.Content
	if h.share.Key != nil {
		c, err := chacha20.NewUnauthenticatedCipher(h.share.Key, nonce(entry.Handle))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		body = make([]byte, len(entry.Content))
		c.XORKeyStream(body, entry.Content)
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))

	if entry.FailAfter > 0 && entry.FailAfter < len(body) {
		w.Write(body[:entry.FailAfter])
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		panic(http.ErrAbortHandler)
	}

	w.Write(body)
}

// nonce derives a stable per-node nonce.
func nonce(handle string) []byte {
	sum := sha256.Sum256([]byte(handle))
	return sum[:sharelink.NonceSize]
}
