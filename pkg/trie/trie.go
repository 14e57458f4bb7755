package trie

import (
	"encoding/binary"
	"fmt"
	"iter"
	"net/netip"
)

// is an alias for int used to define child positions in a trie node.
type ChildPos = int

// Constants representing possible child positions in the trie.
const ZERO ChildPos = 0
const ONE ChildPos = 1

// MaxDepth is the prefix length of a single IPv4 address.
const MaxDepth = 32

// Node is a vertex of a binary IPv4 trie. It stands for the prefix reached by
// following its bit path from the root.
type Node[T any] struct {
	Parent   *Node[T]    // back reference, nil for the root; never owns the parent
	Children [2]*Node[T] // owned children indexed by the next bit
	Info     *T          // optional payload, the trie never looks at it
	addr     uint32      // bit path from the root, left aligned
	depth    int         // prefix length, 0 for the root
	size     uint64      // distinct addresses represented under this node
	terminal bool        // frontier: descendants are hidden from traversal
}

// NewRoot creates the root of an empty trie.
func NewRoot[T any]() *Node[T] {
	return &Node[T]{}
}

// IsRoot checks if the current node is the root of the trie.
func (t *Node[T]) IsRoot() bool {
	return t.Parent == nil && t.depth == 0
}

// returns 1 or 0, the bit that leads from the parent to this node.
func (t *Node[T]) Pos() ChildPos {
	if t.depth == 0 {
		return ZERO
	}
	return int(t.addr>>(MaxDepth-t.depth)) & 1
}

// Depth returns the prefix length of the node.
func (t *Node[T]) Depth() int {
	return t.depth
}

// Addr returns the network address of the node as an integer.
func (t *Node[T]) Addr() uint32 {
	return t.addr
}

func (t *Node[T]) Size() uint64 {
	return t.size
}

// Capacity is the number of addresses the node's prefix spans.
func (t *Node[T]) Capacity() uint64 {
	return 1 << (MaxDepth - t.depth)
}

func (t *Node[T]) IsTerminal() bool {
	return t.terminal
}

func (t *Node[T]) SetTerminal(terminal bool) {
	t.terminal = terminal
}

// MarkTerminalIfDeeper makes the node terminal when prefixLen is more specific
// than the node itself, i.e. a request for prefixLen stops here.
func (t *Node[T]) MarkTerminalIfDeeper(prefixLen int) {
	if prefixLen > t.depth {
		t.terminal = true
	}
}

// checks if the node is a leaf (has no children).
func (t *Node[T]) IsLeaf() bool {
	return t.Children[0] == nil && t.Children[1] == nil
}

// returns the child node Zero or One
//
//	node.Child(trie.ZERO)
func (t *Node[T]) Child(at ChildPos) *Node[T] {
	if t == nil {
		panic("[BUG] Child: struct must not be nil")
	}
	return t.Children[at]
}

// SetChild replaces the child at the given position. A nil child prunes the
// slot and releases the previous child's back reference.
func (t *Node[T]) SetChild(at ChildPos, child *Node[T]) {
	if old := t.Children[at]; old != nil && old != child {
		old.Parent = nil
	}
	if child != nil {
		if t.depth == MaxDepth {
			panic("[BUG] SetChild: a /32 node can not have children")
		}
		child.Parent = t
		child.depth = t.depth + 1
		child.addr = t.addr | uint32(at)<<(MaxDepth-1-t.depth)
	}
	t.Children[at] = child
}

// NewChildAt creates a child holding size addresses and attaches it at the
// given position, replacing any existing one.
func (t *Node[T]) NewChildAt(at ChildPos, size uint64) *Node[T] {
	child := &Node[T]{size: size}
	t.SetChild(at, child)
	return child
}

// UpdateSize adds delta (possibly negative) to the node's size.
func (t *Node[T]) UpdateSize(delta int64) {
	if delta < 0 && uint64(-delta) > t.size {
		panic(fmt.Sprintf("[BUG] UpdateSize: size of %s would go negative (%d%+d)", t, t.size, delta))
	}
	t.size = uint64(int64(t.size) + delta)
}

// Fullness is the share of the node's capacity that is represented.
// A /32 is always full.
func (t *Node[T]) Fullness() float64 {
	if t.depth == MaxDepth {
		return 1.0
	}
	return float64(t.size) / float64(t.Capacity())
}

// Detach will disconnect the node from the tree
// if there is no reference to the node, it will be GC'ed
func (t *Node[T]) Detach() {
	if t.Parent == nil {
		panic("[BUG] Detach: You can not Detach the root")
	}
	t.Parent.SetChild(t.Pos(), nil)
}

// applies a function to each non-nil child of the node.
// returns t itself
func (t *Node[T]) ForEachChild(f func(t *Node[T])) *Node[T] {
	if t.Children[0] != nil {
		f(t.Children[0])
	}
	if t.Children[1] != nil {
		f(t.Children[1])
	}
	return t
}

// recursively applies a function (f) to every descendant, terminal or not.
// returns t itself
func (t *Node[T]) ForEachStepDown(f func(t *Node[T])) *Node[T] {
	t.ForEachChild(func(child *Node[T]) {
		f(child)
		child.ForEachStepDown(f)
	})
	return t
}

// applies a function to the node and each of its ancestors, moving from the node to the root,
// as long as the (while) condition holds. pass nil as while to reach the root.
// returns t itself
func (t *Node[T]) ForEachStepUp(f func(*Node[T]), while func(*Node[T]) bool) *Node[T] {
	for current := t; current != nil && (while == nil || while(current)); current = current.Parent {
		f(current)
	}
	return t
}

// All returns the nodes below t in pre-order: the node itself, then, unless
// it is terminal, its ZERO subtree and its ONE subtree.
//
// The terminal flag is read after the node has been yielded, so a consumer
// that marks a node terminal prunes its subtree from the same pass.
func (t *Node[T]) All() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		t.preorder(yield)
	}
}

func (t *Node[T]) preorder(yield func(*Node[T]) bool) bool {
	if !yield(t) {
		return false
	}
	if t.terminal {
		return true
	}
	for _, child := range t.Children {
		if child != nil && !child.preorder(yield) {
			return false
		}
	}
	return true
}

// Prefix returns the network the node stands for.
func (t *Node[T]) Prefix() netip.Prefix {
	var ip [4]byte
	binary.BigEndian.PutUint32(ip[:], t.addr)
	return netip.PrefixFrom(netip.AddrFrom4(ip), t.depth)
}

func (t *Node[T]) String() string {
	if t.depth == 0 {
		return "root"
	}
	return t.Prefix().String()
}
