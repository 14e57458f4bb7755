// ## Overview
// Package trie implements the vertex of a binary IPv4 prefix trie.
// Every node stands for the prefix reached by its bit path from the root and
// keeps the number of addresses represented beneath it, a terminal flag that
// turns it into an atomic covered block, and an optional payload.
// Nodes only know about their own structure; bookkeeping across the trie is
// left to the caller.
//
// ## Example usage:
//
//	root := trie.NewRoot[string]()
//	child := root.NewChildAt(trie.ZERO, 1)
//	leaf := child.NewChildAt(trie.ONE, 1)
//	root.UpdateSize(1)
//	leaf.SetTerminal(true)
//
//	fmt.Println(leaf)              // Output: 64.0.0.0/2
//	fmt.Println(leaf.Depth())      // Output: 2
//	fmt.Println(leaf.Fullness())   // Output: 9.313225746154785e-10
//
//	// Walk the visible nodes; terminal nodes are yielded but not descended.
//	for node := range root.All() {
//	    fmt.Println(node, node.Size(), node.IsTerminal())
//	}
//
// This package uses generics to let callers attach any payload type to a node.
package trie
