package ipv4tree

import (
	"net/netip"

	"github.com/khalid-nowaf/ipv4tree/pkg/trie"
	"github.com/sirupsen/logrus"
)

type Option func(*Tree) *Tree

func DefaultOptions() *Tree {
	return &Tree{
		root:  trie.NewRoot[Info](),
		index: map[netip.Prefix]*Node{},
		nodes: 1,
		log:   log,
	}
}

// WithLogger replaces the package logger, e.g. to add fields identifying the tree.
func WithLogger(logger *logrus.Entry) Option {
	return func(tree *Tree) *Tree {
		tree.log = logger
		return tree
	}
}
