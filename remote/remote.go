/*
Package remote describes the nodes of a share listing and the engine that serves them.
*/
package remote

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrAuth is wrapped by engines when credentials are rejected.
	ErrAuth = errors.New("authentication failed")

	// ErrTransfer is wrapped by engines when streaming a node fails.
	ErrTransfer = errors.New("transfer failed")
)

// Handle identifies a node within one listing.
type Handle string

// Kind tells files and folders apart.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// IsFile reports whether k is KindFile.
func (k Kind) IsFile() bool { return k == KindFile }

// Node is one entry of a share listing. Two nodes are the same node when their handles match.
type Node struct {
	Handle Handle
	Parent Handle
	Kind   Kind
	Name   string
	Size   int64
}

// Is reports whether n is identified by h.
func (n *Node) Is(h Handle) bool { return n != nil && n.Handle == h }

// Listing is the result of resolving a share URL.
// Roots is a distinguished subset that may overlap with Nodes.
type Listing struct {
	Nodes []*Node
	Roots []*Node
}

// NodeByHandle looks h up in the full traversal, then in the roots.
func (l *Listing) NodeByHandle(h Handle) (*Node, bool) {
	for _, nodes := range [][]*Node{l.Nodes, l.Roots} {
		for _, n := range nodes {
			if n.Is(h) {
				return n, true
			}
		}
	}
	return nil, false
}

// Engine is the remote protocol: session, listing and decrypted streaming.
type Engine interface {
	// Login establishes a session. An empty mfa means no second factor.
	Login(ctx context.Context, email, password, mfa string) error

	// FetchPublicNodes resolves a share URL into its listing.
	FetchPublicNodes(ctx context.Context, url string) (*Listing, error)

	// DownloadNode writes the decrypted content of node to w.
	DownloadNode(ctx context.Context, node *Node, w io.Writer) error
}
