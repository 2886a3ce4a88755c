/*
Package selecting resolves a share listing into the nodes to download.
*/
package selecting

import (
	"errors"
	"fmt"

	"github.com/hioki-daichi/sharedl/logger"
	"github.com/hioki-daichi/sharedl/remote"
)

const promptLabel = "Select a file to download:"

// ErrNotFound is returned when no node can be selected.
var ErrNotFound = errors.New("not found")

var errChoiceOutOfRange = errors.New("selecting: choice out of range")

// Prompter asks the operator to pick exactly one of items and returns its index.
type Prompter interface {
	Select(label string, items []string) (int, error)
}

// Candidates returns the file nodes of l, traversal first and roots second,
// deduplicated by handle in order of first appearance.
func Candidates(l *remote.Listing) []Candidate {
	seen := make(map[Key]struct{})
	ret := make([]Candidate, 0)

	for _, nodes := range [][]*remote.Node{l.Nodes, l.Roots} {
		for _, n := range nodes {
			if n == nil || !n.Kind.IsFile() {
				continue
			}
			c := Specific(n)
			if _, ok := seen[c.Key()]; ok {
				continue
			}
			seen[c.Key()] = struct{}{}
			ret = append(ret, c)
		}
	}

	return ret
}

// Select returns the nodes to transfer.
// A non-empty handle must name a node of l. Without one, a single file candidate is
// picked directly and several are offered to p along with the "all" sentinel.
func Select(l *remote.Listing, h remote.Handle, p Prompter) ([]*remote.Node, error) {
	if h != "" {
		n, ok := l.NodeByHandle(h)
		if !ok {
			return nil, fmt.Errorf("%w: could not find remote node with handle %q", ErrNotFound, h)
		}
		logger.Log.Debug().Str("handle", string(h)).Str("name", n.Name).Msg("node selected by handle")
		return []*remote.Node{n}, nil
	}

	candidates := Candidates(l)

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: no file reachable from this link", ErrNotFound)
	case 1:
		logger.Log.Debug().Str("name", candidates[0].String()).Msg("single candidate selected")
		return []*remote.Node{candidates[0].Node()}, nil
	}

	options := make([]Candidate, 0, len(candidates)+1)
	options = append(append(options, candidates...), All())
	items := make([]string, len(options))
	for i, c := range options {
		items[i] = c.String()
	}

	i, err := p.Select(promptLabel, items)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(options) {
		return nil, errChoiceOutOfRange
	}

	if chosen := options[i]; !chosen.IsAll() {
		return []*remote.Node{chosen.Node()}, nil
	}

	ret := make([]*remote.Node, 0, len(candidates))
	for _, c := range candidates {
		ret = append(ret, c.Node())
	}
	return ret, nil
}
