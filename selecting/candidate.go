package selecting

import "github.com/hioki-daichi/sharedl/remote"

const allLabel = "Download all in folder."

// Candidate is one displayed choice: either a specific node or the "all" sentinel.
type Candidate struct {
	all  bool
	node *remote.Node
}

// Key is the comparable identity of a Candidate.
// The sentinel is keyed apart from every handle, the empty one included.
type Key struct {
	all    bool
	handle remote.Handle
}

// Specific returns a Candidate for n.
func Specific(n *remote.Node) Candidate { return Candidate{node: n} }

// All returns the sentinel Candidate.
func All() Candidate { return Candidate{all: true} }

// IsAll reports whether c is the sentinel.
func (c Candidate) IsAll() bool { return c.all }

// Node returns the underlying node, nil for the sentinel.
func (c Candidate) Node() *remote.Node { return c.node }

// Key returns the identity used for deduplication and for matching the chosen option.
func (c Candidate) Key() Key {
	if c.all {
		return Key{all: true}
	}
	return Key{handle: c.node.Handle}
}

func (c Candidate) String() string {
	if c.all {
		return allLabel
	}
	return c.node.Name
}
