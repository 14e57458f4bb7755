// Package ipv4tree keeps a set of IPv4 networks in a binary trie and
// summarizes them into minimal covering CIDR blocks.
//
// Every node counts the distinct addresses represented beneath it. A terminal
// node is an atomic covered block: insertions that fall inside it are
// absorbed, and traversals do not look beneath it. Aggregate turns dense
// nodes into terminal ones, so the terminal nodes visible from the root are
// always the current cover of the tree.
//
// A Tree is not safe for concurrent use; guard every call with one lock if
// it is shared between goroutines.
package ipv4tree

import (
	"net/netip"

	"github.com/khalid-nowaf/ipv4tree/pkg/trie"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "ipv4tree")

// Info is the optional payload attached to the node of an inserted network.
// The tree carries it around but never looks at it.
type Info struct {
	Attributes map[string]string // generic key value attributes describing the network
}

// Node is a vertex of the tree.
type Node = trie.Node[Info]

// Tree owns the root of the trie and the exact-match index of the networks
// inserted on their own.
type Tree struct {
	root  *Node
	index map[netip.Prefix]*Node // network -> terminal leaf created by its insertion
	nodes int                    // structural node count, root included
	log   *logrus.Entry
}

// NewTree creates an empty tree.
func NewTree(opts ...Option) *Tree {
	tree := DefaultOptions()
	for _, opt := range opts {
		tree = opt(tree)
	}
	return tree
}

// Root returns the root node of the trie.
func (tree *Tree) Root() *Node {
	return tree.root
}

// Insert adds a network to the tree, attaching info to its node when the
// insertion creates one.
//
// Inserting a network that is already indexed, or that falls inside an
// existing terminal block, leaves the tree unchanged. Inserting a network
// above existing nodes turns it into one terminal block of its own size.
func (tree *Tree) Insert(network netip.Prefix, info *Info) error {
	if err := ValidateNetwork(network); err != nil {
		return err
	}
	if tree.Contains(network) {
		tree.log.WithField("network", network).Debug("network already in tree")
		return nil
	}

	size := AddressCount(network)
	tree.root.UpdateSize(int64(size))

	// sizes are added along the path before we know whether the request is new;
	// the excess is given back below if it was not.
	created := false
	node := tree.root
	for _, bit := range NetworkBits(network) {
		if node.IsTerminal() {
			break
		}
		child := node.Child(bit)
		if child == nil {
			child = node.NewChildAt(bit, size)
			tree.nodes++
			created = true
		} else {
			child.UpdateSize(int64(size))
		}
		node = child
	}

	if node.Depth() < network.Bits() {
		node.MarkTerminalIfDeeper(network.Bits())
	} else {
		node.SetTerminal(true)
	}

	if created {
		node.Info = info
		tree.index[network] = node
		return nil
	}

	excess := size
	if node.Depth() == network.Bits() {
		excess = node.Size() - size
	}
	node.ForEachStepUp(func(n *Node) {
		n.UpdateSize(-int64(excess))
	}, nil)

	tree.log.WithFields(logrus.Fields{
		"network": network,
		"block":   node,
	}).Debug("network absorbed by existing block")
	return nil
}

// Delete removes a network that was inserted on its own. Any other network,
// including sub- and supernets of indexed ones, is ignored.
func (tree *Tree) Delete(network netip.Prefix) error {
	if err := ValidateNetwork(network); err != nil {
		return err
	}
	target, found := tree.index[network]
	if !found {
		tree.log.WithField("network", network).Debug("network not indexed, nothing to delete")
		return nil
	}

	parent := target.Parent
	parent.ForEachStepUp(func(n *Node) {
		n.UpdateSize(-int64(target.Size()))
	}, nil)

	tree.forget(target)
	target.Detach()

	// drop the path nodes that only existed for the deleted network
	for node := parent; !node.IsRoot() && node.IsLeaf() && node.Size() == 0; {
		next := node.Parent
		tree.forget(node)
		node.Detach()
		node = next
	}
	return nil
}

// forget discounts the subtree of node from the node count and the index.
func (tree *Tree) forget(node *Node) {
	unindex := func(n *Node) {
		tree.nodes--
		if tree.index[n.Prefix()] == n {
			delete(tree.index, n.Prefix())
		}
	}
	unindex(node)
	node.ForEachStepDown(unindex)
}

// Contains reports whether network itself was inserted and is still indexed.
func (tree *Tree) Contains(network netip.Prefix) bool {
	_, found := tree.index[network]
	return found
}

// InTree reports whether network is indexed, lies inside a terminal block, or
// reaches an existing node of its own prefix length.
func (tree *Tree) InTree(network netip.Prefix) bool {
	if ValidateNetwork(network) != nil {
		return false
	}
	if tree.Contains(network) {
		return true
	}

	node := tree.root
	for _, bit := range NetworkBits(network) {
		if node.IsTerminal() {
			return true
		}
		if node = node.Child(bit); node == nil {
			return false
		}
	}
	return true
}

// Lookup returns the node standing exactly for network, or nil when the trie
// has no such node. Terminal blocks do not stop the walk.
func (tree *Tree) Lookup(network netip.Prefix) *Node {
	if ValidateNetwork(network) != nil {
		return nil
	}
	node := tree.root
	for _, bit := range NetworkBits(network) {
		if node = node.Child(bit); node == nil {
			return nil
		}
	}
	return node
}

// Supernet returns the terminal block that covers network, or nil if none does.
func (tree *Tree) Supernet(network netip.Prefix) *Node {
	if ValidateNetwork(network) != nil {
		return nil
	}
	node := tree.root
	for _, bit := range NetworkBits(network) {
		if node.IsTerminal() {
			return node
		}
		if node = node.Child(bit); node == nil {
			return nil
		}
	}
	if node.IsTerminal() {
		return node
	}
	return nil
}

// Sizeof returns the number of addresses represented by the node standing
// exactly for network, 0 if there is none.
func (tree *Tree) Sizeof(network netip.Prefix) uint64 {
	if node := tree.Lookup(network); node != nil {
		return node.Size()
	}
	return 0
}

// Len returns the number of distinct addresses represented by the tree.
func (tree *Tree) Len() uint64 {
	return tree.root.Size()
}

// Nodes returns the number of nodes in the trie, the root and nodes hidden
// beneath terminal blocks included.
func (tree *Tree) Nodes() int {
	return tree.nodes
}
