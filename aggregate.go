package ipv4tree

import (
	"fmt"
	"iter"
	"math"
	"net/netip"

	"github.com/sirupsen/logrus"
)

// All returns every visible node in pre-order. Terminal nodes are yielded,
// their descendants are not.
func (tree *Tree) All() iter.Seq[*Node] {
	return tree.root.All()
}

// Aggregate marks every visible node whose fullness reaches threshold as a
// terminal block. A node is judged before its children are reached, so a
// dense node absorbs its subtree without the subtree being inspected.
// Terminal nodes stay terminal whatever the threshold; see ResetTerminalBelow.
func (tree *Tree) Aggregate(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v is not within [0, 1]", ErrInvalidThreshold, threshold)
	}

	marked := 0
	for node := range tree.All() {
		if !node.IsTerminal() && node.Fullness() >= threshold {
			node.SetTerminal(true)
			marked++
		}
	}

	tree.log.WithFields(logrus.Fields{
		"threshold": threshold,
		"marked":    marked,
	}).Debug("tree aggregated")
	return nil
}

// ResetTerminalBelow sets the terminal flag to terminal on every node with a
// prefix length below prefixLen. ResetTerminalBelow(32, false) undoes
// Aggregate for every block larger than a single address.
//
// Clearing a flag exposes the node's children to the same pass, so the reset
// reaches the whole trie.
func (tree *Tree) ResetTerminalBelow(prefixLen int, terminal bool) {
	for node := range tree.All() {
		if node.Depth() < prefixLen {
			node.SetTerminal(terminal)
		}
	}
}

// Cover returns the terminal blocks of the tree in address order: the current
// minimal set of networks covering everything inserted.
func (tree *Tree) Cover() []netip.Prefix {
	cover := []netip.Prefix{}
	for node := range tree.All() {
		if node.IsTerminal() {
			cover = append(cover, node.Prefix())
		}
	}
	return cover
}
